package history

import "time"

const SchemaVersion = 1

// Snapshot is one persisted analysis run: when it ran and how many
// findings it produced, broken down by severity and rule.
type Snapshot struct {
	SchemaVersion int            `json:"schema_version"`
	RunID         string         `json:"run_id"`
	Timestamp     time.Time      `json:"timestamp"`
	FileCount     int            `json:"file_count"`
	FindingCount  int            `json:"finding_count"`
	ErrorCount    int            `json:"error_count"`
	WarningCount  int            `json:"warning_count"`
	InfoCount     int            `json:"info_count"`
	FailureCount  int            `json:"failure_count"`
	RuleCounts    map[string]int `json:"rule_counts,omitempty"`
}

type TrendPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	RunID         string    `json:"run_id"`
	FileCount     int       `json:"file_count"`
	FindingCount  int       `json:"finding_count"`
	ErrorCount    int       `json:"error_count"`
	WarningCount  int       `json:"warning_count"`
	DeltaFiles    int       `json:"delta_files"`
	DeltaFindings int       `json:"delta_findings"`
	DeltaErrors   int       `json:"delta_errors"`
	DeltaWarnings int       `json:"delta_warnings"`
	FindingGrowth float64   `json:"finding_growth_pct"`
	AvgFindings   float64   `json:"avg_findings"`
	AvgErrors     float64   `json:"avg_errors"`
	WindowHours   float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	ScanCount     int          `json:"scan_count"`
	Points        []TrendPoint `json:"points"`
}
