// Package stats reports sleep trends across stored results
package stats

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/internal/timeutil"
	"github.com/somnia-sleep/somnia/internal/ui"
)

const (
	barChartChar = "▇"
	noResultsMsg = "No sleep results found for the specified time range"
	reportFormat = "January 02, 2006"
)

// Summary holds totals and averages over a set of results.
type Summary struct {
	Start    time.Time
	End      time.Time
	Severity map[models.Severity]int

	Nights        int
	TotalHours    float64
	AvgHours      float64
	AvgAHI        float64
	AvgSnoring    float64
	AvgEfficiency float64
	ApneaEvents   int

	// WorstID is the result with the highest AHI.
	WorstID  string
	WorstAHI float64
}

// Compute summarizes results. Sleep efficiency is averaged over the results
// that report it.
func Compute(results []models.AnalysisResult) Summary {
	s := Summary{
		Severity: make(map[models.Severity]int),
	}

	if len(results) == 0 {
		return s
	}

	var (
		ahi, snoring, efficiency float64
		withEfficiency           int
	)

	s.Start, s.End = results[0].Timestamp, results[0].Timestamp

	for i := range results {
		r := &results[i]

		s.Nights++
		s.TotalHours += r.DurationHours
		s.ApneaEvents += r.ApneaEvents
		s.Severity[r.Severity]++

		ahi += r.AHI
		snoring += r.SnoringPercentage

		if r.SleepEfficiency != nil {
			efficiency += *r.SleepEfficiency
			withEfficiency++
		}

		if s.WorstID == "" || r.AHI > s.WorstAHI {
			s.WorstID, s.WorstAHI = r.ID, r.AHI
		}

		if r.Timestamp.Before(s.Start) {
			s.Start = r.Timestamp
		}

		if r.Timestamp.After(s.End) {
			s.End = r.Timestamp
		}
	}

	n := float64(s.Nights)

	s.AvgHours = s.TotalHours / n
	s.AvgAHI = ahi / n
	s.AvgSnoring = snoring / n

	if withEfficiency > 0 {
		s.AvgEfficiency = efficiency / float64(withEfficiency)
	}

	return s
}

// nightlyAHI returns one bar per result, oldest first.
func nightlyAHI(results []models.AnalysisResult) pterm.Bars {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b models.AnalysisResult) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	bars := make(pterm.Bars, len(sorted))

	for i := range sorted {
		bars[i] = pterm.Bar{
			Label: sorted[i].Timestamp.Local().Format("Jan 02 15:04"),
			Value: timeutil.Round(sorted[i].AHI),
		}
	}

	return bars
}

// weekdayHours returns the average minutes slept per weekday, Sunday first.
// Weekdays without results are left out.
func weekdayHours(results []models.AnalysisResult) pterm.Bars {
	var (
		total [7]float64
		count [7]int
	)

	for i := range results {
		d := results[i].Timestamp.Local().Weekday()
		total[d] += results[i].DurationHours
		count[d]++
	}

	var bars pterm.Bars

	for d := range total {
		if count[d] == 0 {
			continue
		}

		bars = append(bars, pterm.Bar{
			Label: time.Weekday(d).String(),
			Value: timeutil.Round(total[d] / float64(count[d]) * 60),
		})
	}

	return bars
}

func barChart(title string, bars pterm.Bars) string {
	if len(bars) == 0 {
		return ""
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return ui.Cyan(fmt.Sprintf("\n%s\n", title)) + chart
}

func summaryText(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", ui.Cyan("Summary"))
	fmt.Fprintf(&b, "Nights recorded: %s\n", ui.Green(s.Nights))
	fmt.Fprintf(&b, "Time recorded: %s\n", ui.Green(timeutil.FormatHours(s.TotalHours)))
	fmt.Fprintf(&b, "Apnea events: %s\n", ui.Green(s.ApneaEvents))

	fmt.Fprintf(&b, "\n%s\n", ui.Cyan("Averages"))
	fmt.Fprintf(&b, "Duration: %s\n", ui.Green(timeutil.FormatHours(s.AvgHours)))
	fmt.Fprintf(&b, "AHI: %s\n", ui.Green(fmt.Sprintf("%.1f events/h", s.AvgAHI)))
	fmt.Fprintf(&b, "Snoring: %s\n", ui.Green(fmt.Sprintf("%.1f%%", s.AvgSnoring)))

	if s.AvgEfficiency > 0 {
		fmt.Fprintf(&b, "Sleep efficiency: %s\n", ui.Green(fmt.Sprintf("%.0f%%", s.AvgEfficiency)))
	}

	fmt.Fprintf(&b, "\n%s\n", ui.Cyan("Severity"))

	for _, sev := range []models.Severity{
		models.SeverityNormal,
		models.SeverityMild,
		models.SeverityModerate,
		models.SeveritySevere,
	} {
		if n := s.Severity[sev]; n > 0 {
			fmt.Fprintf(&b, "%s: %s\n", sev, ui.Green(n))
		}
	}

	fmt.Fprintf(&b, "Worst night: %s (AHI %.1f)\n", s.WorstID, s.WorstAHI)

	return b.String()
}

// Show writes the statistics for results to w.
func Show(w io.Writer, results []models.AnalysisResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, noResultsMsg)
		return err
	}

	s := Compute(results)

	timePeriod := "Reporting period: " + s.Start.Local().Format(reportFormat) +
		" - " + s.End.Local().Format(reportFormat)

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintfln("%s", timePeriod)

	output := fmt.Sprint(
		header,
		summaryText(s),
		barChart("Nightly AHI (events/h)", nightlyAHI(results)),
		barChart("Average sleep by weekday (minutes)", weekdayHours(results)),
	)

	_, err := fmt.Fprintln(w, strings.TrimSpace(output))

	return err
}
