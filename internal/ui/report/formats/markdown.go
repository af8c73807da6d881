package formats

import (
	"fmt"
	"strings"
	"time"

	"cconform/internal/engine/findings"
	"cconform/internal/shared/util"
)

// MarkdownReportData carries everything the markdown report renders.
type MarkdownReportData struct {
	ProjectName  string
	GeneratedAt  time.Time
	FileCount    int
	ErrorCount   int
	WarningCount int
	CountByRule  map[string]int
	FailedFiles  []string
	Findings     []findings.Finding
}

// GenerateMarkdown renders the conformance report as a markdown
// document: a summary header, a per-rule breakdown, and the full
// finding list grouped by file.
func GenerateMarkdown(data MarkdownReportData) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("# Conformance Report: %s\n\n", data.ProjectName))
	buf.WriteString(fmt.Sprintf("Generated: %s\n\n", data.GeneratedAt.Format(time.RFC3339)))

	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Metric | Count |\n")
	buf.WriteString("| --- | --- |\n")
	buf.WriteString(fmt.Sprintf("| Files checked | %d |\n", data.FileCount))
	buf.WriteString(fmt.Sprintf("| Findings | %d |\n", len(data.Findings)))
	buf.WriteString(fmt.Sprintf("| Errors | %d |\n", data.ErrorCount))
	buf.WriteString(fmt.Sprintf("| Warnings | %d |\n", data.WarningCount))
	buf.WriteString("\n")

	if len(data.CountByRule) > 0 {
		buf.WriteString("## Findings by Rule\n\n")
		buf.WriteString("| Rule | Count |\n")
		buf.WriteString("| --- | --- |\n")
		for _, ruleID := range util.SortedStringKeys(data.CountByRule) {
			buf.WriteString(fmt.Sprintf("| `%s` | %d |\n", ruleID, data.CountByRule[ruleID]))
		}
		buf.WriteString("\n")
	}

	if len(data.Findings) > 0 {
		buf.WriteString("## Findings\n\n")
		for _, group := range groupByFile(data.Findings) {
			buf.WriteString(fmt.Sprintf("### %s\n\n", group.file))
			buf.WriteString("| Line | Rule | Severity | Message |\n")
			buf.WriteString("| --- | --- | --- | --- |\n")
			for _, f := range group.items {
				buf.WriteString(fmt.Sprintf("| %d:%d | `%s` | %s | %s |\n",
					f.Line, f.Column, f.RuleID, f.Severity, escapeCell(f.Message)))
			}
			buf.WriteString("\n")
		}
	} else {
		buf.WriteString("No findings. ✅\n\n")
	}

	if len(data.FailedFiles) > 0 {
		buf.WriteString("## Files Not Analyzed\n\n")
		for _, f := range data.FailedFiles {
			buf.WriteString(fmt.Sprintf("- %s\n", escapeCell(f)))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

type fileGroup struct {
	file  string
	items []findings.Finding
}

// groupByFile keeps the incoming order inside each file and orders the
// groups by their first appearance, which for aggregated findings is
// already by path.
func groupByFile(items []findings.Finding) []fileGroup {
	index := make(map[string]int, len(items))
	groups := make([]fileGroup, 0)
	for _, f := range items {
		i, ok := index[f.FilePath]
		if !ok {
			i = len(groups)
			index[f.FilePath] = i
			groups = append(groups, fileGroup{file: f.FilePath})
		}
		groups[i].items = append(groups[i].items, f)
	}
	return groups
}
