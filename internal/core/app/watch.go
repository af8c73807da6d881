package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"cconform/internal/core/watcher"
)

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Watch.MaxRate,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	w.SetExtensionFilters(a.SupportedExtensions())
	a.activeWatcher = w
	return w.Watch(a.Config.ScanPaths)
}

// HandleChanges re-analyzes the changed files and pushes the refreshed
// state to subscribers. Deleted files drop out of the result set.
func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	for _, path := range paths {
		if !a.IsSupportedPath(path) {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.forgetFile(path)
			continue
		}

		if _, err := a.ProcessFile(path); err != nil {
			slog.Warn("failed to re-process file", "path", path, "error", err)
		}
	}

	update := a.CurrentUpdate()
	slog.Info("re-analysis complete",
		"files", update.FileCount,
		"findings", len(update.Findings),
		"duration", time.Since(start),
	)
	a.emitUpdate(update)

	if a.Config.Alerts.Beep && update.ErrorCount > 0 {
		fmt.Print("\a")
	}
}
