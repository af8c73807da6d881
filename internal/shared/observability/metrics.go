package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cconform_analysis_seconds",
		Help:    "Time spent on analysis stages per file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	FilesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cconform_files_analyzed_total",
		Help: "Total number of source files analyzed.",
	})

	FileFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cconform_file_failures_total",
		Help: "Total number of files that could not be read or analyzed.",
	})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cconform_findings_total",
		Help: "Total number of findings emitted, by rule and severity.",
	}, []string{"rule", "severity"})

	FindingsCurrent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cconform_findings_current",
		Help: "Findings in the most recent scan, by severity.",
	}, []string{"severity"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cconform_scan_seconds",
		Help:    "Wall-clock time for a full scan.",
		Buckets: prometheus.DefBuckets,
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cconform_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RulePanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cconform_rule_panics_total",
		Help: "Total number of contained rule panics, by rule.",
	}, []string{"rule"})
)
