package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	coreapp "cconform/internal/core/app"
	"cconform/internal/core/config"
	"cconform/internal/core/ports"
	"cconform/internal/data/history"
	"cconform/internal/shared/util"
	"cconform/internal/shared/version"
	"cconform/internal/ui/report"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("%s v%s\n", version.ToolName, version.Version)
		return 0
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	config.ApplyEnvOverrides(cfg)

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	analysis, app, err := initializeAnalysis(cfg, coreAnalysisFactory{})
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer app.Close()

	var obs *ObservabilityServer
	if cfg.Observability.Enabled {
		obs = NewObservabilityServer(cfg.Observability.Address, coreapp.NewHealthService(app))
		if err := obs.Start(context.Background()); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = obs.Stop(ctx)
		}()
	}

	scan, err := analysis.RunScan(context.Background(), ports.ScanRequest{})
	if err != nil {
		slog.Error("initial scan failed", "error", err)
		return 1
	}

	summary, err := analysis.SummarySnapshot(context.Background())
	if err != nil {
		slog.Error("failed to collect summary snapshot", "error", err)
		return 1
	}

	if _, err := analysis.SyncOutputs(context.Background(), ports.SyncOutputsRequest{}); err != nil {
		slog.Error("failed to generate reports", "error", err)
	}

	historyStore, err := openHistoryStoreIfEnabled(opts.history, cfg)
	if err != nil {
		slog.Error("history setup failed", "error", err)
		return 1
	}
	if historyStore != nil {
		defer historyStore.Close()
	}

	trendReport, err := runHistoryMode(opts, analysis, cfg, historyStore)
	if err != nil {
		slog.Error("history mode failed", "error", err)
		return 1
	}

	if !opts.ui {
		if err := analysis.PrintSummary(context.Background(), ports.SummaryPrintRequest{
			Duration: scan.Duration,
			Snapshot: summary,
		}); err != nil {
			slog.Error("failed to print summary", "error", err)
			return 1
		}
	}

	if opts.once {
		if summary.ErrorCount > 0 {
			return 1
		}
		return 0
	}

	watch := analysis.WatchService()
	if watch == nil {
		slog.Error("watch service unavailable")
		return 1
	}
	if err := watch.Start(context.Background()); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	if opts.ui {
		if err := runUI(app, trendReport); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	select {}
}

func loadConfig(path, cwd string) (*config.Config, error) {
	if path != defaultConfigPath {
		return config.Load(path)
	}

	for _, candidate := range discoverDefaultConfig(cwd) {
		cfg, loadErr := config.Load(candidate)
		if loadErr == nil {
			return cfg, nil
		}
		if os.IsNotExist(loadErr) {
			continue
		}
		return nil, loadErr
	}

	slog.Info("no config file found, using defaults")
	return config.Default(), nil
}

func discoverDefaultConfig(cwd string) []string {
	return []string{
		filepath.Clean(filepath.Join(cwd, config.DefaultFileName)),
		filepath.Clean(filepath.Join(cwd, "data/config", config.DefaultFileName)),
		filepath.Clean(filepath.Join(cwd, "cconform.example.toml")),
	}
}

func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if len(opts.args) > 0 {
		cfg.ScanPaths = append([]string(nil), opts.args...)
	}
	if opts.includeInfo {
		cfg.Rules.IncludeInfo = true
	}
	if opts.sarifPath != "" {
		cfg.Output.SARIF = opts.sarifPath
	}
	if opts.markdownPath != "" {
		cfg.Output.Markdown = opts.markdownPath
	}
	if opts.tsvPath != "" {
		cfg.Output.TSV = opts.tsvPath
	}
	if opts.metricsAddr != "" {
		cfg.Observability.Enabled = true
		cfg.Observability.Address = opts.metricsAddr
	}

	if (opts.historyTSV != "" || opts.historyJSON != "") && !opts.history {
		return fmt.Errorf("--history-tsv/--history-json require --history")
	}
	if opts.history {
		if !cfg.DB.Enabled {
			return fmt.Errorf("--history requires db.enabled=true in config")
		}
		if _, err := parseHistoryWindow(opts.historyWindow); err != nil {
			return err
		}
		if _, err := parseSince(opts.since); err != nil {
			return err
		}
	}
	return nil
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func parseHistoryWindow(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--history-window must be a Go duration (example: 24h), got %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--history-window must be > 0, got %q", value)
	}
	return d, nil
}

func openHistoryStoreIfEnabled(enabled bool, cfg *config.Config) (*history.Store, error) {
	if !enabled || !cfg.DB.Enabled {
		return nil, nil
	}

	dbPath := cfg.DB.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.Paths.DatabaseDir, dbPath)
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

func projectKey(cfg *config.Config, cwd string) string {
	root := strings.TrimSpace(cfg.Paths.ProjectRoot)
	if root == "" {
		root = cwd
	}
	key := filepath.Base(filepath.Clean(root))
	if key == "" || key == "." || key == string(filepath.Separator) {
		return "default"
	}
	return key
}

func runHistoryMode(
	opts cliOptions,
	analysis ports.AnalysisService,
	cfg *config.Config,
	store ports.HistoryStore,
) (*history.TrendReport, error) {
	if !opts.history {
		return nil, nil
	}
	if store == nil {
		return nil, fmt.Errorf("history store unavailable")
	}

	since, err := parseSince(opts.since)
	if err != nil {
		return nil, err
	}
	window, err := parseHistoryWindow(opts.historyWindow)
	if err != nil {
		return nil, err
	}

	cwd, _ := os.Getwd()
	trend, err := analysis.CaptureHistoryTrend(context.Background(), store, ports.HistoryTrendRequest{
		ProjectKey: projectKey(cfg, cwd),
		Since:      since,
		Window:     window,
	})
	if err != nil {
		return nil, err
	}
	if trend.Report == nil {
		fmt.Println("History: no snapshots matched the requested time window.")
		return nil, nil
	}
	trendReport := trend.Report

	fmt.Print(report.RenderTrendSummary(*trendReport))

	if opts.historyTSV != "" {
		tsv, err := report.RenderTrendTSV(*trendReport)
		if err != nil {
			return nil, fmt.Errorf("render trend TSV: %w", err)
		}
		if err := util.WriteFileWithDirs(opts.historyTSV, tsv, 0o644); err != nil {
			return nil, fmt.Errorf("write trend TSV %q: %w", opts.historyTSV, err)
		}
	}

	if opts.historyJSON != "" {
		raw, err := report.RenderTrendJSON(*trendReport)
		if err != nil {
			return nil, fmt.Errorf("render trend JSON: %w", err)
		}
		if err := util.WriteFileWithDirs(opts.historyJSON, raw, 0o644); err != nil {
			return nil, fmt.Errorf("write trend JSON %q: %w", opts.historyJSON, err)
		}
	}

	return trendReport, nil
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode {
		// In UI mode, stdout logs would corrupt the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cconform", "cconform.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "cconform", "cconform.log")
	}

	return "cconform.log"
}
