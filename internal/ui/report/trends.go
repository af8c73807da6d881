package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"cconform/internal/data/history"
)

// RenderTrendTSV renders one row per recorded scan so trends can be
// plotted or diffed from the shell.
func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRunID\tFiles\tFindings\tErrors\tWarnings\tDeltaFiles\tDeltaFindings\tDeltaErrors\tDeltaWarnings\tFindingGrowthPct\tAvgFindings\tAvgErrors\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.RunID,
			point.FileCount,
			point.FindingCount,
			point.ErrorCount,
			point.WarningCount,
			point.DeltaFiles,
			point.DeltaFindings,
			point.DeltaErrors,
			point.DeltaWarnings,
			point.FindingGrowth,
			point.AvgFindings,
			point.AvgErrors,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// RenderTrendSummary is the compact terminal rendering used after a
// scan that captured history.
func RenderTrendSummary(report history.TrendReport) string {
	if len(report.Points) == 0 {
		return "no trend data recorded yet\n"
	}

	var buf strings.Builder
	latest := report.Points[len(report.Points)-1]
	buf.WriteString(fmt.Sprintf("Trend over %d scans (%s → %s):\n",
		report.ScanCount,
		report.Since.Format("2006-01-02 15:04"),
		report.Until.Format("2006-01-02 15:04"),
	))
	buf.WriteString(fmt.Sprintf("  findings %d (%+d), errors %d (%+d), warnings %d (%+d)\n",
		latest.FindingCount, latest.DeltaFindings,
		latest.ErrorCount, latest.DeltaErrors,
		latest.WarningCount, latest.DeltaWarnings,
	))
	buf.WriteString(fmt.Sprintf("  %.0fh moving average: %.2f findings, %.2f errors\n",
		latest.WindowHours, latest.AvgFindings, latest.AvgErrors))
	return buf.String()
}
