// Package persistence saves and restores per-file viewer session state —
// viewport position, search/filter history, marks, filters, and option
// toggles — as one JSON file per input path under $HOME/.lazylog/.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// CurrentVersion is the persisted-state schema version. A stored file with
// a different version is ignored outright rather than migrated.
const CurrentVersion = 1

// Viewport is the persisted slice of viewport state.
type Viewport struct {
	SelectedLine     int  `json:"selected_line"`
	TopLine          int  `json:"top_line"`
	HorizontalOffset int  `json:"horizontal_offset"`
	CenterCursorMode bool `json:"center_cursor_mode"`
}

// FilterHistoryEntry mirrors filter.HistoryEntry for serialization.
type FilterHistoryEntry struct {
	Pattern       string `json:"pattern"`
	Mode          string `json:"mode"`
	CaseSensitive bool   `json:"case_sensitive"`
}

// FilterPatternState mirrors filter.Pattern for serialization.
type FilterPatternState struct {
	Pattern       string `json:"pattern"`
	Mode          string `json:"mode"`
	CaseSensitive bool   `json:"case_sensitive"`
	Enabled       bool   `json:"enabled"`
}

// MarkState mirrors marks.Mark for serialization.
type MarkState struct {
	LineIndex int    `json:"line_index"`
	Name      string `json:"name,omitempty"`
}

// EventFilterState is the enabled/disabled state of one event pattern.
type EventFilterState struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// OptionState is the enabled/disabled state of one app option toggle.
type OptionState struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// State is the complete persisted session snapshot for one input path.
type State struct {
	Version       int                  `json:"version"`
	LogFilePath   string               `json:"log_file_path"`
	Viewport      Viewport             `json:"viewport"`
	SearchHistory []string             `json:"search_history"`
	FilterHistory []FilterHistoryEntry `json:"filter_history"`
	Filters       []FilterPatternState `json:"filters"`
	Marks         []MarkState          `json:"marks"`
	EventFilters  []EventFilterState   `json:"event_filters"`
	Options       []OptionState        `json:"options"`
}

// StatePath returns the persisted-state file path for logFilePath: a hash
// of its canonicalized form under $HOME/.lazylog/.
func StatePath(logFilePath string) (string, error) {
	abs, err := filepath.Abs(logFilePath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(abs))
	return filepath.Join(home, ".lazylog", fmt.Sprintf("%x.json", h.Sum64())), nil
}

func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lazylog"), nil
}

// Save writes state to disk for logFilePath. Failures are never fatal to
// the caller — the PersistError policy is "logged; never user-facing".
func Save(logFilePath string, state State) error {
	dir, err := stateDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	path, err := StatePath(logFilePath)
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		return fmt.Errorf("locking state file: %w", err)
	}
	defer lock.Unlock()

	state.Version = CurrentVersion
	state.LogFilePath = logFilePath
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// Load reads persisted state for logFilePath. It returns ok=false (never an
// error) on a missing file, a corrupt file, a version mismatch, or a stored
// path that no longer matches logFilePath — all treated identically per
// the "corrupt/missing -> ignore" policy.
func Load(logFilePath string) (State, bool) {
	path, err := StatePath(logFilePath)
	if err != nil {
		return State{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, false
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, false
	}
	if state.Version != CurrentVersion {
		return State{}, false
	}
	if state.LogFilePath != logFilePath {
		return State{}, false
	}
	return state, true
}

// ClearAll removes every persisted state file from $HOME/.lazylog/,
// returning a human-readable summary.
func ClearAll() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "No state directory found.", nil
		}
		return "", fmt.Errorf("reading state directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return "", fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
		count++
	}

	if count == 0 {
		return fmt.Sprintf("No state files found in %s", dir), nil
	}
	return fmt.Sprintf("Cleared %d state file(s) from %s", count, dir), nil
}
