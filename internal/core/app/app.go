package app

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cconform/internal/core/config"
	"cconform/internal/core/watcher"
	"cconform/internal/engine/findings"
	"cconform/internal/engine/lexer"
	"cconform/internal/engine/parser"
	"cconform/internal/engine/rules"
	"cconform/internal/shared/observability"
)

// Update carries the state pushed to subscribers after a watch-mode
// re-analysis.
type Update struct {
	Findings     []findings.Finding
	FileCount    int
	ErrorCount   int
	WarningCount int
}

type App struct {
	Config *config.Config
	engine *rules.Engine

	// Findings keyed by file path so single-file re-analysis in watch
	// mode replaces exactly one entry.
	stateMu  sync.RWMutex
	perFile  map[string][]findings.Finding
	failures map[string]string

	updateMu sync.RWMutex
	onUpdate func(Update)

	activeWatcher *watcher.Watcher
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &App{
		Config:   cfg,
		engine:   rules.NewEngine(cfg.Rules.Options()),
		perFile:  make(map[string][]findings.Finding),
		failures: make(map[string]string),
	}, nil
}

// AnalyzeFile runs the full pipeline over one source file: tokenize,
// structural parse, rule evaluation, aggregation. It is pure with
// respect to app state; callers decide whether to record the result.
func (a *App) AnalyzeFile(path string, content []byte) ([]findings.Finding, error) {
	lexStart := time.Now()
	src := lexer.Lex(path, string(content))
	observability.AnalysisDuration.WithLabelValues("lex").Observe(time.Since(lexStart).Seconds())

	parseStart := time.Now()
	res := parser.Parse(src)
	observability.AnalysisDuration.WithLabelValues("parse").Observe(time.Since(parseStart).Seconds())

	ruleStart := time.Now()
	out := findings.Aggregate(a.engine.Evaluate(res))
	observability.AnalysisDuration.WithLabelValues("rules").Observe(time.Since(ruleStart).Seconds())

	observability.FilesAnalyzedTotal.Inc()
	for _, f := range out {
		observability.FindingsTotal.WithLabelValues(f.RuleID, string(f.Severity)).Inc()
	}
	return out, nil
}

// IsSupportedPath reports whether path is a C source or header file.
func (a *App) IsSupportedPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".c" || ext == ".h"
}

func (a *App) SupportedExtensions() []string {
	return []string{".c", ".h"}
}

// recordResult stores a file's findings, clearing any previous failure.
func (a *App) recordResult(path string, items []findings.Finding) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.perFile[path] = items
	delete(a.failures, path)
}

// recordFailure stores a read/analysis failure, clearing stale findings.
func (a *App) recordFailure(path string, msg string) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	delete(a.perFile, path)
	a.failures[path] = msg
	observability.FileFailuresTotal.Inc()
}

// forgetFile drops all state for a deleted file.
func (a *App) forgetFile(path string) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	delete(a.perFile, path)
	delete(a.failures, path)
}

// AllFindings returns every recorded finding in canonical order.
func (a *App) AllFindings() []findings.Finding {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	all := make([]findings.Finding, 0)
	for _, items := range a.perFile {
		all = append(all, items...)
	}
	return findings.Aggregate(all)
}

func (a *App) FileCount() int {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return len(a.perFile)
}

// FailedFiles returns the paths that could not be analyzed, with
// their failure messages folded in.
func (a *App) FailedFiles() []string {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	out := make([]string, 0, len(a.failures))
	for path, msg := range a.failures {
		out = append(out, fmt.Sprintf("%s: %s", path, msg))
	}
	sort.Strings(out)
	return out
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) CurrentUpdate() Update {
	all := a.AllFindings()
	counts := findings.CountBySeverity(all)
	return Update{
		Findings:     all,
		FileCount:    a.FileCount(),
		ErrorCount:   counts[findings.SeverityError],
		WarningCount: counts[findings.SeverityWarning],
	}
}

func (a *App) emitUpdate(update Update) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(update)
	}
}

func (a *App) Close() error {
	if a.activeWatcher != nil {
		return a.activeWatcher.Close()
	}
	return nil
}
