package rules

import (
	"strings"
	"testing"
)

func TestFileNaming(t *testing.T) {
	cases := []struct {
		path string
		want int
	}{
		{"uart_driver.c", 0},
		{"include/uart_driver.h", 0},
		{"adc2.c", 0},
		{"UartDriver.c", 1},
		{"uart-driver.c", 1},
		{"uart_driver.cpp", 1},
		{"2adc.c", 1},
	}
	for _, tc := range cases {
		got := byRule(analyze(t, tc.path, ""), "file-naming")
		if len(got) != tc.want {
			t.Errorf("%s: expected %d findings, got %d", tc.path, tc.want, len(got))
		}
	}
}

func TestConstNaming(t *testing.T) {
	src := "#define MAX_SIZE 10\n#define maxSize 10\n#define BufSize 10\n"
	got := byRule(analyze(t, "config.h", src), "const-naming")
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
	if got[0].Line != 2 || got[1].Line != 3 {
		t.Errorf("expected findings on lines 2 and 3, got %d and %d", got[0].Line, got[1].Line)
	}
}

func TestConstDefinePrefersMacros(t *testing.T) {
	src := "const int bufferSize = 32;\n\nvoid UpdateState(void)\n{\n    const int localLimit = 4;\n}\n"
	got := byRule(analyze(t, "state.c", src), "const-define")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding for the file-scope const, got %d", len(got))
	}
	if got[0].Line != 1 {
		t.Errorf("expected finding on line 1, got %d", got[0].Line)
	}
}

func TestTypeNamingSuffix(t *testing.T) {
	src := "typedef unsigned char byte_t;\ntypedef struct { int x; } point;\n"
	got := byRule(analyze(t, "types.h", src), "type-naming")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if !strings.Contains(got[0].Message, "point") {
		t.Errorf("message should name the typedef: %q", got[0].Message)
	}
}

func TestTypeNamingConfigurableSuffixes(t *testing.T) {
	opts := DefaultOptions()
	opts.TypeSuffixes = []string{"_t", "_e"}

	src := "typedef enum { STATE_IDLE } state_e;\n"
	got := byRule(analyzeOpts(t, "types.h", src, opts), "type-naming")
	if len(got) != 0 {
		t.Errorf("expected suffix _e to be accepted, got %v", got)
	}
}

func TestVarNamingCasing(t *testing.T) {
	src := "int sampleCount;\nint SampleCount;\nint sample_count;\nint x;\n"
	got := byRule(analyze(t, "vars.c", src), "var-naming")
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
	for _, f := range got {
		if f.Line != 2 && f.Line != 3 {
			t.Errorf("unexpected finding on line %d: %s", f.Line, f.Message)
		}
	}
}

func TestVarNamingHungarianPrefix(t *testing.T) {
	flagged := []string{"pBuffer", "nCount", "szName", "bReady"}
	for _, name := range flagged {
		got := byRule(analyze(t, "vars.c", "int "+name+";\n"), "var-naming")
		if len(got) != 1 {
			t.Errorf("%s: expected a Hungarian prefix finding, got %d", name, len(got))
		}
	}

	clean := []string{"position", "buffer", "nextIndex", "speed"}
	for _, name := range clean {
		got := byRule(analyze(t, "vars.c", "int "+name+";\n"), "var-naming")
		if len(got) != 0 {
			t.Errorf("%s: expected no finding, got %v", name, got)
		}
	}
}

func TestFuncNamingCasing(t *testing.T) {
	src := "void readSensor(void);\nvoid Read_Sensor(void);\nvoid ReadSensor(void);\n"
	got := byRule(analyze(t, "sensor.h", src), "func-naming")
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
}

func TestFuncNamingVerbHeuristic(t *testing.T) {
	src := "void SensorValue(void);\nvoid GetValue(void);\nvoid InitBoard(void);\n"
	got := byRule(analyze(t, "sensor.h", src), "func-naming")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if !strings.Contains(got[0].Message, "SensorValue") {
		t.Errorf("message should name the function: %q", got[0].Message)
	}
}

func TestFuncNamingConfigurableVerbs(t *testing.T) {
	opts := DefaultOptions()
	opts.VerbWhitelist = append(opts.VerbWhitelist, "blink")

	src := "void BlinkLed(void);\n"
	got := byRule(analyzeOpts(t, "led.h", src, opts), "func-naming")
	if len(got) != 0 {
		t.Errorf("expected configured verb to be accepted, got %v", got)
	}
}
