package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"cconform/internal/core/ports"
	"cconform/internal/engine/findings"
	"cconform/internal/shared/observability"
	"cconform/internal/shared/util"
)

// InitialScan walks the configured scan paths and analyzes every
// supported file, recording results in app state.
func (a *App) InitialScan(ctx context.Context) (*ports.ScanResult, error) {
	roots := uniqueScanRoots(a.Config.ScanPaths)
	files, err := a.ScanDirectories(roots, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scanned := a.analyzeAll(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	duration := time.Since(start)
	observability.ScanDuration.Observe(duration.Seconds())

	return &ports.ScanResult{
		FilesScanned: a.FileCount(),
		Findings:     scanned,
		Failures:     a.FailedFiles(),
		Duration:     duration,
	}, nil
}

// ScanDirectories collects the supported files under paths, honoring
// the exclude globs. Patterns without a path separator match the base
// name; patterns with one match the normalized relative path. Matched
// directories prune the whole subtree.
func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirMatchers, err := compileExcludes(excludeDirs)
	if err != nil {
		return nil, err
	}
	fileMatchers, err := compileExcludes(excludeFiles)
	if err != nil {
		return nil, err
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel := relativeTo(root, path)
			if d.IsDir() {
				if matchesAny(dirMatchers, rel, filepath.Base(path)) {
					return filepath.SkipDir
				}
				return nil
			}

			if !a.IsSupportedPath(path) {
				return nil
			}
			if matchesAny(fileMatchers, rel, filepath.Base(path)) {
				return nil
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

type excludeMatcher struct {
	pattern string
	glob    glob.Glob
	pathed  bool
}

func compileExcludes(patterns []string) ([]excludeMatcher, error) {
	matchers := make([]excludeMatcher, 0, len(patterns))
	for _, p := range patterns {
		pathed := util.ContainsPathSeparator(p)
		source := p
		if pathed {
			source = util.NormalizePatternPath(p)
		}
		g, err := glob.Compile(source, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		matchers = append(matchers, excludeMatcher{pattern: source, glob: g, pathed: pathed})
	}
	return matchers, nil
}

func matchesAny(matchers []excludeMatcher, rel, base string) bool {
	for _, m := range matchers {
		if m.pathed {
			if m.glob.Match(rel) || util.HasPathPrefix(rel, m.pattern) {
				return true
			}
			continue
		}
		if m.glob.Match(base) {
			return true
		}
	}
	return false
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return util.NormalizePatternPath(rel)
}

// analyzeAll processes files concurrently and returns the aggregated
// findings of this pass. A single unreadable file is recorded as a
// failure, never aborts the scan.
func (a *App) analyzeAll(ctx context.Context, files []string) []findings.Finding {
	collector := findings.NewCollector()
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			items, err := a.ProcessFile(path)
			if err != nil {
				slog.Warn("failed to process file", "path", path, "error", err)
				return nil
			}
			collector.Add(items...)
			return nil
		})
	}
	_ = group.Wait()
	return findings.Aggregate(collector.Findings())
}

// ProcessFile reads, analyzes, and records one file.
func (a *App) ProcessFile(path string) ([]findings.Finding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		a.recordFailure(path, err.Error())
		return nil, err
	}

	items, err := a.AnalyzeFile(path, content)
	if err != nil {
		a.recordFailure(path, err.Error())
		return nil, err
	}

	a.recordResult(path, items)
	return items, nil
}

// uniqueScanRoots deduplicates and cleans the configured scan roots.
func uniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		clean := filepath.Clean(p)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}
	sort.Strings(out)
	return out
}
