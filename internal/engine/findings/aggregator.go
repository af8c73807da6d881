package findings

import (
	"sort"
	"sync"
)

// Aggregate returns the findings sorted by (file, line, column, rule id)
// with exact duplicates (same rule, location and message) collapsed to
// one. The input slice is not modified.
func Aggregate(items []Finding) []Finding {
	out := make([]Finding, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})

	deduped := out[:0]
	for i, f := range out {
		if i > 0 && f == out[i-1] {
			continue
		}
		deduped = append(deduped, f)
	}
	return deduped
}

// Collector accepts finding submissions from parallel per-file workers.
// Findings returns the aggregated read-only view; the collector itself
// never formats or prints.
type Collector struct {
	mu    sync.Mutex
	items []Finding
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(items ...Finding) {
	if len(items) == 0 {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, items...)
	c.mu.Unlock()
}

// Findings returns the collected findings, sorted and deduplicated.
func (c *Collector) Findings() []Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Aggregate(c.items)
}

// Len returns the raw (pre-deduplication) submission count.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CountBySeverity tallies aggregated findings per severity level.
func CountBySeverity(items []Finding) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, f := range items {
		counts[f.Severity]++
	}
	return counts
}
