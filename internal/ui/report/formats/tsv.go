package formats

import (
	"fmt"
	"strings"

	"cconform/internal/engine/findings"
)

// GenerateTSV renders findings as a tab-separated table, one finding
// per row, suitable for spreadsheet import or shell pipelines.
func GenerateTSV(items []findings.Finding) string {
	var buf strings.Builder

	buf.WriteString("Rule\tSeverity\tFile\tLine\tColumn\tMessage\n")
	for _, f := range items {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%s\n",
			f.RuleID,
			f.Severity,
			f.FilePath,
			f.Line,
			f.Column,
			escapeCell(f.Message),
		))
	}

	return buf.String()
}
