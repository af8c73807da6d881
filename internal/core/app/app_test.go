package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cconform/internal/core/config"
	"cconform/internal/engine/findings"
)

const cleanSource = `/**
 * @brief Reads one raw sample.
 */
int ReadSample(void)
{
    return 0;
}
`

const dirtySource = `int badName_ = 0;
`

func newTestApp(t *testing.T, scanPath string) *App {
	t.Helper()
	cfg := config.Default()
	cfg.ScanPaths = []string{scanPath}
	app, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return app
}

func TestApp_InitialScan(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "adc_driver.c"), []byte(cleanSource), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "uart_driver.c"), []byte(dirtySource), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.md"), []byte("not C"), 0o644); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, tmpDir)
	result, err := app.InitialScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesScanned != 2 {
		t.Fatalf("expected 2 files scanned, got %d", result.FilesScanned)
	}
	if len(result.Findings) == 0 {
		t.Fatal("expected findings from the non-conformant file")
	}
	for _, f := range result.Findings {
		if filepath.Base(f.FilePath) == "notes.md" {
			t.Fatalf("unsupported file was analyzed: %s", f.FilePath)
		}
	}
}

func TestApp_ScanDirectories_Excludes(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "build"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"main.c":           cleanSource,
		"main_test.c":      cleanSource,
		"build/gen.c":      cleanSource,
		"include/config.h": cleanSource,
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	app := newTestApp(t, tmpDir)
	found, err := app.ScanDirectories([]string{tmpDir}, []string{"build"}, []string{"*_test.c"})
	if err != nil {
		t.Fatal(err)
	}

	if len(found) != 2 {
		t.Fatalf("expected 2 files after excludes, got %d: %v", len(found), found)
	}
	for _, f := range found {
		base := filepath.Base(f)
		if base == "gen.c" || base == "main_test.c" {
			t.Fatalf("excluded file was returned: %s", f)
		}
	}
}

func TestApp_ScanDirectories_PathedExcludes(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		"src/main.c",
		"src/gen/tables.c",
		"vendor/lib/helper.c",
	}
	for _, name := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(cleanSource), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	app := newTestApp(t, tmpDir)
	found, err := app.ScanDirectories([]string{tmpDir}, []string{"src/gen"}, []string{"vendor/**"})
	if err != nil {
		t.Fatal(err)
	}

	if len(found) != 1 || filepath.Base(found[0]) != "main.c" {
		t.Fatalf("expected only src/main.c to survive, got %v", found)
	}
}

func TestApp_ProcessFileFailureIsRecorded(t *testing.T) {
	tmpDir := t.TempDir()
	goodPath := filepath.Join(tmpDir, "good_driver.c")
	if err := os.WriteFile(goodPath, []byte(cleanSource), 0o644); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, tmpDir)
	if _, err := app.ProcessFile(filepath.Join(tmpDir, "missing_driver.c")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := app.ProcessFile(goodPath); err != nil {
		t.Fatal(err)
	}

	if app.FileCount() != 1 {
		t.Fatalf("expected 1 analyzed file, got %d", app.FileCount())
	}
	failed := app.FailedFiles()
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed file, got %v", failed)
	}
}

func TestApp_HandleChangesDropsDeletedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pwm_driver.c")
	if err := os.WriteFile(path, []byte(dirtySource), 0o644); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, tmpDir)

	var updates []Update
	app.SetUpdateHandler(func(u Update) { updates = append(updates, u) })

	app.HandleChanges([]string{path})
	if app.FileCount() != 1 {
		t.Fatalf("expected 1 file after change, got %d", app.FileCount())
	}
	if len(updates) != 1 || len(updates[0].Findings) == 0 {
		t.Fatalf("expected update with findings, got %+v", updates)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	app.HandleChanges([]string{path})
	if app.FileCount() != 0 {
		t.Fatalf("expected 0 files after deletion, got %d", app.FileCount())
	}
	if len(updates) != 2 || len(updates[1].Findings) != 0 {
		t.Fatalf("expected empty update after deletion, got %+v", updates)
	}
}

func TestApp_AnalyzeFileIsDeterministic(t *testing.T) {
	app := newTestApp(t, ".")
	first, err := app.AnalyzeFile("uart_driver.c", []byte(dirtySource))
	if err != nil {
		t.Fatal(err)
	}
	second, err := app.AnalyzeFile("uart_driver.c", []byte(dirtySource))
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("finding %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestApp_AllFindingsAreOrdered(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"zeta_driver.c", "alpha_driver.c"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(dirtySource), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	app := newTestApp(t, tmpDir)
	if _, err := app.InitialScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	all := app.AllFindings()
	if len(all) < 2 {
		t.Fatalf("expected findings from both files, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].FilePath > all[i].FilePath {
			t.Fatalf("findings not ordered by file: %s before %s", all[i-1].FilePath, all[i].FilePath)
		}
	}
	if count := findings.CountBySeverity(all)[findings.SeverityError]; count == 0 {
		t.Fatal("expected error-severity findings")
	}
}
