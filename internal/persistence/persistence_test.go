package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

func withTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestStatePathIsStableForSamePath(t *testing.T) {
	withTempHome(t)

	a, err := StatePath("/var/log/app.log")
	if err != nil {
		t.Fatal(err)
	}
	b, err := StatePath("/var/log/app.log")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected stable path, got %q and %q", a, b)
	}

	c, err := StatePath("/var/log/other.log")
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Fatal("expected different log paths to hash to different state files")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	withTempHome(t)

	logPath := filepath.Join(t.TempDir(), "app.log")
	state := State{
		Viewport: Viewport{SelectedLine: 42, TopLine: 10, CenterCursorMode: true},
		SearchHistory: []string{"panic", "error"},
		Filters: []FilterPatternState{
			{Pattern: "DEBUG", Mode: "exclude", Enabled: true},
		},
		Marks: []MarkState{{LineIndex: 7, Name: "start"}},
	}

	if err := Save(logPath, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, ok := Load(logPath)
	if !ok {
		t.Fatal("expected ok=true after Save")
	}
	if loaded.Viewport.SelectedLine != 42 || loaded.Viewport.TopLine != 10 || !loaded.Viewport.CenterCursorMode {
		t.Fatalf("unexpected viewport: %+v", loaded.Viewport)
	}
	if len(loaded.SearchHistory) != 2 || loaded.SearchHistory[0] != "panic" {
		t.Fatalf("unexpected search history: %+v", loaded.SearchHistory)
	}
	if len(loaded.Filters) != 1 || loaded.Filters[0].Pattern != "DEBUG" {
		t.Fatalf("unexpected filters: %+v", loaded.Filters)
	}
	if loaded.Version != CurrentVersion {
		t.Fatalf("expected version %d, got %d", CurrentVersion, loaded.Version)
	}
}

func TestLoadMissingStateIsNotAnError(t *testing.T) {
	withTempHome(t)

	_, ok := Load(filepath.Join(t.TempDir(), "never-saved.log"))
	if ok {
		t.Fatal("expected ok=false for a log path with no persisted state")
	}
}

func TestLoadRejectsMismatchedLogPath(t *testing.T) {
	home := withTempHome(t)
	logPath := filepath.Join(t.TempDir(), "app.log")

	if err := Save(logPath, State{}); err != nil {
		t.Fatal(err)
	}

	path, err := StatePath(logPath)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := []byte(`{"version":1,"log_file_path":"/somewhere/else.log"}`)
	if err := os.WriteFile(path, tampered, 0o644); err != nil {
		t.Fatal(err)
	}
	_ = data

	_, ok := Load(logPath)
	if ok {
		t.Fatal("expected ok=false when stored log_file_path no longer matches")
	}
	_ = home
}

func TestLoadRejectsOldVersion(t *testing.T) {
	withTempHome(t)
	logPath := filepath.Join(t.TempDir(), "app.log")

	path, err := StatePath(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	old := []byte(`{"version":0,"log_file_path":"` + logPath + `"}`)
	if err := os.WriteFile(path, old, 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok := Load(logPath)
	if ok {
		t.Fatal("expected ok=false for an outdated version")
	}
}

func TestClearAllRemovesStateFiles(t *testing.T) {
	withTempHome(t)

	for _, name := range []string{"a.log", "b.log"} {
		if err := Save(filepath.Join(t.TempDir(), name), State{}); err != nil {
			t.Fatal(err)
		}
	}

	msg, err := ClearAll()
	if err != nil {
		t.Fatal(err)
	}
	if msg == "" {
		t.Fatal("expected a non-empty summary message")
	}

	dir, err := stateDir()
	if err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			t.Fatalf("expected no .json files left, found %s", e.Name())
		}
	}
}

func TestClearAllOnMissingDirIsNotAnError(t *testing.T) {
	withTempHome(t)

	msg, err := ClearAll()
	if err != nil {
		t.Fatal(err)
	}
	if msg == "" {
		t.Fatal("expected a descriptive message")
	}
}
