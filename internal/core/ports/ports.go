package ports

import (
	"context"
	"time"

	"cconform/internal/data/history"
	"cconform/internal/engine/findings"
)

// FileAnalyzer abstracts single-file conformance analysis.
type FileAnalyzer interface {
	AnalyzeFile(path string, content []byte) ([]findings.Finding, error)
	IsSupportedPath(path string) bool
	SupportedExtensions() []string
}

// HistoryStore abstracts snapshot persistence for trend workflows.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) error
	LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error)
}

// ScanRequest defines a scan operation request for driving adapters.
type ScanRequest struct {
	Paths []string
}

// ScanResult summarizes a completed scan operation.
type ScanResult struct {
	FilesScanned int
	Findings     []findings.Finding
	Failures     []string
	Duration     time.Duration
}

// SyncOutputsRequest defines report synchronization input for driving
// adapters. Formats are report format names (sarif, markdown, tsv).
type SyncOutputsRequest struct {
	Formats []string
}

// SyncOutputsResult contains generated report paths.
type SyncOutputsResult struct {
	Written []string
}

// SummarySnapshot captures the current analysis state for driving
// adapters.
type SummarySnapshot struct {
	FileCount    int
	FindingCount int
	ErrorCount   int
	WarningCount int
	CountByRule  map[string]int
	FailedFiles  []string
}

// SummaryPrintRequest captures terminal-summary rendering inputs.
type SummaryPrintRequest struct {
	Duration time.Duration
	Snapshot SummarySnapshot
}

// WatchUpdate contains state emitted to driving adapters after each
// watch-mode re-analysis.
type WatchUpdate struct {
	Findings     []findings.Finding
	FilesScanned int
	ErrorCount   int
	WarningCount int
}

// WatchService exposes watch lifecycle and updates for driving adapters.
type WatchService interface {
	Start(ctx context.Context) error
	CurrentUpdate(ctx context.Context) (WatchUpdate, error)
	Subscribe(ctx context.Context, handler func(WatchUpdate)) error
}

// AnalysisService defines the driving-port surface over scan and
// report use cases.
type AnalysisService interface {
	RunScan(ctx context.Context, req ScanRequest) (ScanResult, error)
	SummarySnapshot(ctx context.Context) (SummarySnapshot, error)
	PrintSummary(ctx context.Context, req SummaryPrintRequest) error
	SyncOutputs(ctx context.Context, req SyncOutputsRequest) (SyncOutputsResult, error)
	CaptureHistoryTrend(ctx context.Context, store HistoryStore, req HistoryTrendRequest) (HistoryTrendResult, error)
	WatchService() WatchService
}

// HistoryTrendRequest captures inputs needed to save a snapshot and
// compute trends.
type HistoryTrendRequest struct {
	ProjectKey string
	Since      time.Time
	Window     time.Duration
}

// HistoryTrendResult contains the optional trend report and saved
// snapshot metadata.
type HistoryTrendResult struct {
	Report             *history.TrendReport
	SnapshotSaved      bool
	SnapshotsEvaluated int
	LatestFindingCount int
	LatestErrorCount   int
}
