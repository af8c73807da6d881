package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cconform/internal/core/errors"
	"cconform/internal/core/ports"
	"cconform/internal/data/history"
	"cconform/internal/engine/findings"
	"cconform/internal/shared/util"
	"cconform/internal/ui/report/formats"
)

type analysisService struct {
	app *App
}

var _ ports.AnalysisService = (*analysisService)(nil)

func NewAnalysisService(app *App) ports.AnalysisService {
	return &analysisService{app: app}
}

func (s *analysisService) Unwrap() *App {
	return s.app
}

func (a *App) AnalysisService() ports.AnalysisService {
	return NewAnalysisService(a)
}

func (s *analysisService) RunScan(ctx context.Context, req ports.ScanRequest) (ports.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.ScanResult{}, err
	}
	if s.app == nil {
		return ports.ScanResult{}, fmt.Errorf("app is required")
	}
	if s.app.Config == nil {
		return ports.ScanResult{}, fmt.Errorf("config is required")
	}

	start := time.Now()
	if len(req.Paths) > 0 {
		paths := normalizeScanPaths(req.Paths)
		files, err := s.app.ScanDirectories(paths, s.app.Config.Exclude.Dirs, s.app.Config.Exclude.Files)
		if err != nil {
			return ports.ScanResult{}, errors.AddContext(err, errors.CtxOperation, "scan_directories")
		}
		scanned := s.app.analyzeAll(ctx, files)
		if err := ctx.Err(); err != nil {
			return ports.ScanResult{}, err
		}
		return ports.ScanResult{
			FilesScanned: s.app.FileCount(),
			Findings:     scanned,
			Failures:     s.app.FailedFiles(),
			Duration:     time.Since(start),
		}, nil
	}

	result, err := s.app.InitialScan(ctx)
	if err != nil {
		return ports.ScanResult{}, errors.AddContext(err, errors.CtxOperation, "initial_scan")
	}
	return *result, nil
}

func (s *analysisService) SummarySnapshot(ctx context.Context) (ports.SummarySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return ports.SummarySnapshot{}, err
	}
	if s.app == nil {
		return ports.SummarySnapshot{}, fmt.Errorf("app is required")
	}

	all := s.app.AllFindings()
	bySeverity := findings.CountBySeverity(all)
	byRule := make(map[string]int, len(all))
	for _, f := range all {
		byRule[f.RuleID]++
	}

	return ports.SummarySnapshot{
		FileCount:    s.app.FileCount(),
		FindingCount: len(all),
		ErrorCount:   bySeverity[findings.SeverityError],
		WarningCount: bySeverity[findings.SeverityWarning],
		CountByRule:  byRule,
		FailedFiles:  s.app.FailedFiles(),
	}, nil
}

func (s *analysisService) PrintSummary(ctx context.Context, req ports.SummaryPrintRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	s.app.PrintSummary(req.Duration, req.Snapshot)
	return nil
}

func (s *analysisService) SyncOutputs(ctx context.Context, req ports.SyncOutputsRequest) (ports.SyncOutputsResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.SyncOutputsResult{}, err
	}
	if s.app == nil {
		return ports.SyncOutputsResult{}, fmt.Errorf("app is required")
	}
	if s.app.Config == nil {
		return ports.SyncOutputsResult{}, fmt.Errorf("config is required")
	}

	all := s.app.AllFindings()
	snapshot, err := s.SummarySnapshot(ctx)
	if err != nil {
		return ports.SyncOutputsResult{}, err
	}

	wanted := formatSet(req.Formats)
	output := s.app.Config.Output
	root := s.app.Config.Paths.ProjectRoot
	written := make([]string, 0, 3)

	if output.SARIF != "" && (wanted == nil || wanted["sarif"]) {
		doc, err := formats.GenerateSARIF(root, all)
		if err != nil {
			return ports.SyncOutputsResult{}, fmt.Errorf("generate sarif report: %w", err)
		}
		if err := util.WriteFileWithDirs(output.SARIF, doc, 0o644); err != nil {
			return ports.SyncOutputsResult{}, err
		}
		written = append(written, output.SARIF)
	}

	if output.Markdown != "" && (wanted == nil || wanted["markdown"]) {
		md := formats.GenerateMarkdown(formats.MarkdownReportData{
			ProjectName:  filepath.Base(firstNonEmpty(root, ".")),
			GeneratedAt:  time.Now().UTC(),
			FileCount:    snapshot.FileCount,
			ErrorCount:   snapshot.ErrorCount,
			WarningCount: snapshot.WarningCount,
			CountByRule:  snapshot.CountByRule,
			FailedFiles:  snapshot.FailedFiles,
			Findings:     all,
		})
		if err := util.WriteStringWithDirs(output.Markdown, md, 0o644); err != nil {
			return ports.SyncOutputsResult{}, err
		}
		written = append(written, output.Markdown)
	}

	if output.TSV != "" && (wanted == nil || wanted["tsv"]) {
		if err := util.WriteStringWithDirs(output.TSV, formats.GenerateTSV(all), 0o644); err != nil {
			return ports.SyncOutputsResult{}, err
		}
		written = append(written, output.TSV)
	}

	return ports.SyncOutputsResult{Written: uniqueStrings(written)}, nil
}

func (s *analysisService) CaptureHistoryTrend(ctx context.Context, historyStore ports.HistoryStore, req ports.HistoryTrendRequest) (ports.HistoryTrendResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.HistoryTrendResult{}, err
	}
	if s.app == nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("app is required")
	}
	if historyStore == nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("history store is required")
	}

	projectKey := strings.TrimSpace(req.ProjectKey)
	if projectKey == "" {
		projectKey = "default"
	}

	window := req.Window
	if window <= 0 {
		window = 24 * time.Hour
	}

	all := s.app.AllFindings()
	bySeverity := findings.CountBySeverity(all)
	ruleCounts := make(map[string]int, len(all))
	for _, f := range all {
		ruleCounts[f.RuleID]++
	}

	snapshot := history.Snapshot{
		Timestamp:    time.Now().UTC(),
		FileCount:    s.app.FileCount(),
		FindingCount: len(all),
		ErrorCount:   bySeverity[findings.SeverityError],
		WarningCount: bySeverity[findings.SeverityWarning],
		InfoCount:    bySeverity[findings.SeverityInfo],
		FailureCount: len(s.app.FailedFiles()),
		RuleCounts:   ruleCounts,
	}

	if err := historyStore.SaveSnapshot(projectKey, snapshot); err != nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("save history snapshot: %w", err)
	}

	snapshots, err := historyStore.LoadSnapshots(projectKey, req.Since)
	if err != nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("load history snapshots: %w", err)
	}

	result := ports.HistoryTrendResult{
		SnapshotSaved:      true,
		SnapshotsEvaluated: len(snapshots),
		LatestFindingCount: snapshot.FindingCount,
		LatestErrorCount:   snapshot.ErrorCount,
	}
	if len(snapshots) == 0 {
		return result, nil
	}

	report, err := history.BuildTrendReport(snapshots, window)
	if err != nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("build trend report: %w", err)
	}
	result.Report = &report
	return result, nil
}

func (s *analysisService) WatchService() ports.WatchService {
	return &watchService{app: s.app}
}

type watchService struct {
	app *App
}

var _ ports.WatchService = (*watchService)(nil)

func (s *watchService) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	return s.app.StartWatcher()
}

func (s *watchService) CurrentUpdate(ctx context.Context) (ports.WatchUpdate, error) {
	if err := ctx.Err(); err != nil {
		return ports.WatchUpdate{}, err
	}
	if s.app == nil {
		return ports.WatchUpdate{}, fmt.Errorf("app is required")
	}
	return toWatchUpdate(s.app.CurrentUpdate()), nil
}

func (s *watchService) Subscribe(ctx context.Context, handler func(ports.WatchUpdate)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}
	s.app.SetUpdateHandler(func(update Update) {
		if ctx.Err() != nil {
			return
		}
		handler(toWatchUpdate(update))
	})
	return nil
}

func toWatchUpdate(update Update) ports.WatchUpdate {
	return ports.WatchUpdate{
		Findings:     append([]findings.Finding(nil), update.Findings...),
		FilesScanned: update.FileCount,
		ErrorCount:   update.ErrorCount,
		WarningCount: update.WarningCount,
	}
}

func formatSet(formats []string) map[string]bool {
	if len(formats) == 0 {
		return nil
	}
	out := make(map[string]bool, len(formats))
	for _, format := range formats {
		trimmed := strings.ToLower(strings.TrimSpace(format))
		if trimmed == "" {
			continue
		}
		out[trimmed] = true
	}
	return out
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

func normalizeScanPaths(paths []string) []string {
	cleaned := make([]string, 0, len(paths))
	seen := make(map[string]bool)
	for _, p := range paths {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		abs := trimmed
		if absPath, err := filepath.Abs(trimmed); err == nil {
			abs = absPath
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		cleaned = append(cleaned, abs)
	}
	return cleaned
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
