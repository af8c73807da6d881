package rules

import (
	"strings"
	"testing"
)

func TestIndentationMultiple(t *testing.T) {
	src := "void RunLoop(void)\n{\n    int stepCount;\n   stepCount = 0;\n}\n"
	got := byRule(analyze(t, "loop.c", src), "indentation")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].Line != 4 {
		t.Errorf("expected finding on line 4, got %d", got[0].Line)
	}
}

func TestIndentationMixedTabsAndSpaces(t *testing.T) {
	src := "void RunLoop(void)\n{\n\t  int stepCount;\n}\n"
	got := byRule(analyze(t, "loop.c", src), "indentation")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if !strings.Contains(got[0].Message, "tabs") {
		t.Errorf("expected a mixing message, got %q", got[0].Message)
	}
}

func TestIndentationConfigurableWidth(t *testing.T) {
	opts := DefaultOptions()
	opts.IndentWidth = 2

	src := "void RunLoop(void)\n{\n  int stepCount;\n}\n"
	got := byRule(analyzeOpts(t, "loop.c", src, opts), "indentation")
	if len(got) != 0 {
		t.Errorf("expected 2-space indent to pass with width 2, got %v", got)
	}
}

func TestIndentationIgnoresCommentBodies(t *testing.T) {
	src := "/*\n   aligned continuation text\n */\nint value;\n"
	got := byRule(analyze(t, "notes.c", src), "indentation")
	if len(got) != 0 {
		t.Errorf("comment interiors should not be checked, got %v", got)
	}
}

func TestBraceRequired(t *testing.T) {
	src := strings.Join([]string{
		"if (x)",
		"    DoThing();",
		"else",
		"{",
		"    DoOther();",
		"}",
		"while (x)",
		"    Spin();",
		"",
	}, "\n")
	got := byRule(analyze(t, "flow.c", src), "brace-required")
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
	if got[0].Line != 1 || got[1].Line != 7 {
		t.Errorf("expected findings on lines 1 and 7, got %d and %d", got[0].Line, got[1].Line)
	}
}

func TestOneStatementPerLine(t *testing.T) {
	src := "void ResetCounters(void)\n{\n    a = 0; b = 0; c = 0;\n    for (i = 0; i < n; i++)\n    {\n        Step();\n    }\n}\n"
	got := byRule(analyze(t, "counters.c", src), "one-statement")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].Line != 3 {
		t.Errorf("expected finding on line 3, got %d", got[0].Line)
	}
}

func TestLineLength(t *testing.T) {
	long := "int aVeryLongVariableName = 0; // " + strings.Repeat("x", 60)
	src := "int shortName = 0;\n" + long + "\n"
	got := byRule(analyze(t, "long.c", src), "line-length")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].Line != 2 || got[0].Column != 81 {
		t.Errorf("expected finding at 2:81, got %d:%d", got[0].Line, got[0].Column)
	}
}

func TestLineLengthConfigurable(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLineLength = 120

	src := "int name = 0; // " + strings.Repeat("x", 80) + "\n"
	got := byRule(analyzeOpts(t, "long.c", src, opts), "line-length")
	if len(got) != 0 {
		t.Errorf("expected the raised limit to pass, got %v", got)
	}
}
