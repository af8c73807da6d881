package formats

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateMarkdown(t *testing.T) {
	md := GenerateMarkdown(MarkdownReportData{
		ProjectName:  "firmware",
		GeneratedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		FileCount:    4,
		ErrorCount:   2,
		WarningCount: 1,
		CountByRule:  map[string]int{"var-naming": 2, "line-length": 1},
		Findings:     sampleFindings(),
	})

	for _, want := range []string{
		"# Conformance Report: firmware",
		"| Files checked | 4 |",
		"| Errors | 2 |",
		"| `line-length` | 1 |",
		"### /project/src/uart_driver.c",
		"| 12:9 | `comparison-order` | error |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestGenerateMarkdown_NoFindings(t *testing.T) {
	md := GenerateMarkdown(MarkdownReportData{
		ProjectName: "firmware",
		GeneratedAt: time.Now().UTC(),
		FileCount:   4,
	})
	if !strings.Contains(md, "No findings.") {
		t.Error("expected clean-report marker")
	}
	if strings.Contains(md, "## Findings\n") {
		t.Error("did not expect findings section")
	}
}

func TestGenerateMarkdown_FailedFiles(t *testing.T) {
	md := GenerateMarkdown(MarkdownReportData{
		ProjectName: "firmware",
		GeneratedAt: time.Now().UTC(),
		FailedFiles: []string{"src/broken_driver.c: permission denied"},
	})
	if !strings.Contains(md, "## Files Not Analyzed") {
		t.Error("expected failed-files section")
	}
	if !strings.Contains(md, "src/broken_driver.c") {
		t.Error("expected failed file path")
	}
}

func TestGenerateTSV(t *testing.T) {
	out := GenerateTSV(sampleFindings())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Rule\tSeverity\tFile") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "comparison-order\terror") {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
}

func TestRuleDisplayName(t *testing.T) {
	cases := map[string]string{
		"switch-default": "SwitchDefault",
		"doc-comment":    "DocComment",
		"rule-internal":  "RuleInternal",
		"magic":          "Magic",
	}
	for in, want := range cases {
		if got := ruleDisplayName(in); got != want {
			t.Errorf("ruleDisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
