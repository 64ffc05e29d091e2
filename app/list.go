package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/somnia-sleep/somnia/internal/models"
	"github.com/somnia-sleep/somnia/internal/timeutil"
	"github.com/somnia-sleep/somnia/internal/ui"
	"github.com/somnia-sleep/somnia/report"
)

const (
	noResultsMsg = "No sleep results found for the specified time range"
	dateFormat   = "Jan 02, 2006 03:04 PM"
	shortIDLen   = 8
)

var historyHeader = []string{
	"#", "DATE", "DURATION", "SEVERITY", "AHI", "SNORING", "MODALITIES", "SOURCE", "ID",
}

// filterSince keeps the results recorded at or after since. History is
// newest first so the scan stops at the first older entry.
func filterSince(results []models.AnalysisResult, since time.Time) []models.AnalysisResult {
	if since.IsZero() {
		return results
	}

	for i := range results {
		if results[i].Timestamp.Before(since) {
			return results[:i]
		}
	}

	return results
}

// modalityLabel lists the modalities that contributed to r.
func modalityLabel(r *models.AnalysisResult) string {
	parts := []string{string(models.Audio)}

	if r.VideoEnabled {
		parts = append(parts, string(models.Video))
	}

	if r.WearableEnabled {
		parts = append(parts, string(models.Wearable))
	}

	return strings.Join(parts, " · ")
}

// printHistoryTable prints a table of results to w.
func printHistoryTable(w io.Writer, results []models.AnalysisResult) error {
	rows := make([][]string, len(results))

	for i := range results {
		r := &results[i]

		id := r.ID
		if len(id) > shortIDLen {
			id = id[:shortIDLen]
		}

		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			r.Timestamp.Local().Format(dateFormat),
			timeutil.FormatHours(r.DurationHours),
			report.Severity(r.Severity),
			fmt.Sprintf("%.1f", r.AHI),
			fmt.Sprintf("%.1f%%", r.SnoringPercentage),
			modalityLabel(r),
			string(r.Source),
			ui.Cyan(id),
		}
	}

	return ui.PrintTable(w, historyHeader, rows)
}
