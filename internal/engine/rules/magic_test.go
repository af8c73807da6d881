package rules

import (
	"strings"
	"testing"
)

func TestMagicNumberFlagsBareLiterals(t *testing.T) {
	src := "void ConfigureTimer(void)\n{\n    delayTicks = 500;\n}\n"
	got := byRule(analyze(t, "timer.c", src), "magic-number")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if !strings.Contains(got[0].Message, "500") {
		t.Errorf("message should show the literal: %q", got[0].Message)
	}
}

func TestMagicNumberAllowListDefaults(t *testing.T) {
	src := "void ResetAll(void)\n{\n    count = 0;\n    index = 1;\n    status = -1;\n}\n"
	got := byRule(analyze(t, "reset.c", src), "magic-number")
	if len(got) != 0 {
		t.Errorf("0, 1 and -1 are allowed by default, got %v", got)
	}
}

func TestMagicNumberConfigurableAllowList(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowedMagicNumbers = []int{0, 1, -1, 8}

	src := "void ShiftByte(void)\n{\n    value = value << 8;\n}\n"
	got := byRule(analyzeOpts(t, "shift.c", src, opts), "magic-number")
	if len(got) != 0 {
		t.Errorf("expected 8 to be allowed, got %v", got)
	}
}

func TestMagicNumberSkipsDefines(t *testing.T) {
	src := "#define TIMEOUT_MS 500\n#define RETRY_LIMIT \\\n    25\n"
	got := byRule(analyze(t, "limits.h", src), "magic-number")
	if len(got) != 0 {
		t.Errorf("preprocessor lines are exempt, got %v", got)
	}
}

func TestMagicNumberSkipsConstantInitializers(t *testing.T) {
	src := "typedef enum\n{\n    STATE_IDLE = 0,\n    STATE_ARMED = 5,\n    STATE_FAULT = 99\n} state_t;\n"
	got := byRule(analyze(t, "state.h", src), "magic-number")
	if len(got) != 0 {
		t.Errorf("enum member values are constant definitions, got %v", got)
	}
}

func TestMagicNumberHexAndSuffixes(t *testing.T) {
	src := "void SetMask(void)\n{\n    mask = 0xFFu;\n}\n"
	got := byRule(analyze(t, "mask.c", src), "magic-number")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
}

func TestMagicNumberSubtractionIsNotNegation(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowedMagicNumbers = []int{-5}

	src := "void Adjust(void)\n{\n    value = value - 5;\n}\n"
	got := byRule(analyzeOpts(t, "adjust.c", src, opts), "magic-number")
	if len(got) != 1 {
		t.Errorf("5 after a binary minus is not -5, got %v", got)
	}
}
