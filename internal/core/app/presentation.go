package app

import (
	"fmt"
	"strings"
	"time"

	"cconform/internal/core/ports"
	"cconform/internal/shared/util"
)

// PrintSummary writes the human terminal summary after a scan or
// watch-mode update. Silent when terminal alerts are disabled.
func (a *App) PrintSummary(duration time.Duration, snapshot ports.SummarySnapshot) {
	if !a.Config.Alerts.Terminal {
		return
	}

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Checked %d files in %v\n", snapshot.FileCount, duration)

	if snapshot.FindingCount > 0 {
		fmt.Printf("⚠️  FOUND %d CONFORMANCE FINDINGS (%d errors, %d warnings):\n",
			snapshot.FindingCount, snapshot.ErrorCount, snapshot.WarningCount)
		for _, ruleID := range util.SortedStringKeys(snapshot.CountByRule) {
			fmt.Printf("   %-20s %d\n", ruleID, snapshot.CountByRule[ruleID])
		}
	} else {
		fmt.Println("✅ No conformance findings.")
	}

	if len(snapshot.FailedFiles) > 0 {
		fmt.Printf("❌ %d FILES COULD NOT BE ANALYZED:\n", len(snapshot.FailedFiles))
		for _, f := range snapshot.FailedFiles {
			fmt.Printf("   %s\n", f)
		}
	}
}
