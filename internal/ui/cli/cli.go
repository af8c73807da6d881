package cli

import "flag"

const defaultConfigPath = "./cconform.toml"

type cliOptions struct {
	configPath    string
	once          bool
	ui            bool
	includeInfo   bool
	sarifPath     string
	markdownPath  string
	tsvPath       string
	metricsAddr   string
	history       bool
	since         string
	historyWindow string
	historyTSV    string
	historyJSON   string
	verbose       bool
	version       bool
	args          []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("cconform", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.once, "once", false, "Run single scan and exit (exit code 1 when errors are found)")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.BoolVar(&opts.includeInfo, "include-info", false, "Report info-severity findings from may-level rules")
	fs.StringVar(&opts.sarifPath, "sarif", "", "Write SARIF report to this path (overrides config)")
	fs.StringVar(&opts.markdownPath, "markdown", "", "Write Markdown report to this path (overrides config)")
	fs.StringVar(&opts.tsvPath, "tsv", "", "Write TSV report to this path (overrides config)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics and health on this address (overrides config)")
	fs.BoolVar(&opts.history, "history", false, "Enable local history snapshots and trend reporting")
	fs.StringVar(&opts.since, "since", "", "Include historical snapshots at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.historyWindow, "history-window", "24h", "Moving-window duration for trend summaries (requires --history)")
	fs.StringVar(&opts.historyTSV, "history-tsv", "", "Write trend report TSV to this path (requires --history)")
	fs.StringVar(&opts.historyJSON, "history-json", "", "Write trend report JSON to this path (requires --history)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
