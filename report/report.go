// Package report renders analysis results and user-facing notices in the
// terminal
package report

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pterm/pterm"

	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/internal/osutil"
	"github.com/somnia-sleep/somnia/internal/timeutil"
	"github.com/somnia-sleep/somnia/internal/ui"
)

const dateFormat = "Jan 02, 2006 03:04 PM"

var severityGrades = []models.Severity{
	models.SeverityNormal,
	models.SeverityMild,
	models.SeverityModerate,
	models.SeveritySevere,
}

var riskGrades = []string{"low", "moderate", "high"}

// Severity returns the coloured severity label.
func Severity(s models.Severity) string {
	return ui.Level(string(s), slices.Index(severityGrades, s), len(severityGrades)-1)
}

// Risk returns the coloured risk label.
func Risk(level string) string {
	return ui.Level(level, slices.Index(riskGrades, strings.ToLower(level)), len(riskGrades)-1)
}

// Result writes a summary of r to w. Sections are only shown for the
// modalities that contributed to the result.
func Result(w io.Writer, r models.AnalysisResult) error {
	var b strings.Builder

	line := func(label string, value any) {
		fmt.Fprintf(&b, "  %-22s %v\n", label+":", value)
	}

	fmt.Fprintf(&b, "%s\n", pterm.Bold.Sprint("SLEEP ANALYSIS"))
	line("Recorded", r.Timestamp.Local().Format(dateFormat))
	line("ID", r.ID)
	line("Analyzed", r.Source)
	line("Duration", timeutil.FormatHours(r.DurationHours))
	line("Severity", Severity(r.Severity))
	line("AHI", fmt.Sprintf("%.1f events/h", r.AHI))

	if r.RiskLevel != "" {
		line("Risk", Risk(r.RiskLevel))
	}

	if r.SleepEfficiency != nil {
		line("Sleep efficiency", fmt.Sprintf("%.0f%%", *r.SleepEfficiency))
	}

	fmt.Fprintf(&b, "\n%s\n", pterm.Bold.Sprint("AUDIO"))
	line("Snoring events", r.SnoringEvents)
	line("Snoring time", fmt.Sprintf("%.1f min (%.1f%%)", r.SnoringMinutes, r.SnoringPercentage))
	line("Apnea events", r.ApneaEvents)
	line("Longest pause", fmt.Sprintf("%.0f s", r.LongestPauseSeconds))

	if r.SleepStages != nil {
		st := r.SleepStages
		line("Stages (min)", fmt.Sprintf(
			"wake %d · light %d · deep %d · rem %d",
			st.WakeMinutes, st.LightMinutes, st.DeepMinutes, st.REMMinutes,
		))
	}

	if r.VideoEnabled && r.SleepPositions != nil {
		p := r.SleepPositions

		fmt.Fprintf(&b, "\n%s\n", pterm.Bold.Sprint("VIDEO"))
		line("Positions", fmt.Sprintf("back %d%% · side %d%% · stomach %d%%", p.Back, p.Side, p.Stomach))
		line("Movements", r.MovementCount)
		line("Restlessness", fmt.Sprintf("%d/100", r.RestlessnessScore))
	}

	if r.WearableEnabled && r.HasWearableSection() {
		fmt.Fprintf(&b, "\n%s\n", pterm.Bold.Sprint("WEARABLE"))

		if hr := r.HeartRate; hr != nil {
			line("Heart rate (bpm)", fmt.Sprintf("avg %d · min %d · max %d", hr.Average, hr.Min, hr.Max))
			line("HRV", fmt.Sprintf("%d ms", hr.Variability))
			line("Irregular beats", hr.IrregularBeats)
		}

		if o := r.BloodOxygen; o != nil {
			line("SpO2", fmt.Sprintf("avg %d%% · min %d%%", o.Average, o.Min))
			line("Desaturations", o.Desaturations)
		}

		if tmp := r.Temperature; tmp != nil {
			line("Skin temperature", fmt.Sprintf("%.1f °C (%.1f to %.1f)", tmp.Average, tmp.Min, tmp.Max))
		}
	}

	if len(r.Disorders) > 0 {
		fmt.Fprintf(&b, "\n%s\n", pterm.Bold.Sprint("FINDINGS"))

		for _, d := range r.Disorders {
			fmt.Fprintf(&b, "  - %s\n", d)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n%s\n", pterm.Bold.Sprint("RECOMMENDATIONS"))

		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// Notice prints an informational message.
func Notice(format string, args ...any) {
	pterm.Info.Printfln(format, args...)
}

// Warn prints a warning for a failure that did not abort the command.
func Warn(err error) {
	pterm.Warning.Println(err)
}

func Error(err error) {
	pterm.Error.Println(err)
}

// Quit prints err and exits with a failure status.
func Quit(err error) {
	pterm.Error.Println(err)
	os.Exit(int(osutil.ExitError))
}
