// Package config loads the TOML highlight-pattern config and the
// predefined-filters file, with silent fallback to defaults on a missing
// or malformed file.
package config

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lazylog/lazylog/internal/filter"
)

// HighlightConfig is one `[[highlight_patterns]]` entry: a span-level
// pattern->style mapping.
type HighlightConfig struct {
	Pattern string `toml:"pattern"`
	Regex   bool   `toml:"regex"`
	Color   string `toml:"color"`
}

// LineColorConfig is one `[[line_colors]]` entry: a whole-line event
// pattern->style mapping.
type LineColorConfig struct {
	Pattern string `toml:"pattern"`
	Color   string `toml:"color"`
	Regex   bool   `toml:"regex"`
}

// Config is the parsed contents of config.toml. Unknown keys are ignored
// by BurntSushi/toml's default decode behavior.
type Config struct {
	HighlightPatterns []HighlightConfig `toml:"highlight_patterns"`
	LineColors        []LineColorConfig `toml:"line_colors"`
	// GapSeparatorSeconds is the minimum time gap between consecutive
	// timestamped lines that draws a separator divider. Zero (the
	// unconfigured default) falls back to DefaultGapSeparatorSeconds.
	GapSeparatorSeconds int `toml:"gap_separator_seconds"`

	path string
}

// DefaultGapSeparatorSeconds is the gap-separator threshold used when
// config.toml omits gap_separator_seconds.
const DefaultGapSeparatorSeconds = 5

// GapThreshold returns the configured gap-separator threshold as a
// time.Duration, substituting DefaultGapSeparatorSeconds when unset.
func (c Config) GapThreshold() time.Duration {
	secs := c.GapSeparatorSeconds
	if secs <= 0 {
		secs = DefaultGapSeparatorSeconds
	}
	return time.Duration(secs) * time.Second
}

// Path returns the file the config was loaded from, or "" if defaults were
// used (no file found, or the file was malformed).
func (c Config) Path() string { return c.path }

// Load loads the configuration from an explicit path if given, otherwise
// from lazylog/config.toml under the platform config directory
// (os.UserConfigDir) or a local .lazylog.toml. A missing or malformed file
// yields zero-value defaults and ok=false — never fatal. The result does not
// tell a missing file from a malformed one; cmd/lazylog prints a startup
// warning only when the path was given explicitly with -c/--config.
func Load(explicitPath string) (cfg Config, ok bool) {
	path := explicitPath
	if path == "" {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, false
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false
	}
	cfg.path = path
	return cfg, true
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "lazylog", "config.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ".lazylog.toml"
}

// DeriveColor deterministically derives a hex color from pattern text, used
// when a highlight/line-color entry omits an explicit color.
func DeriveColor(pattern string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(pattern))
	sum := h.Sum32()
	r := 96 + sum%128
	g := 96 + (sum>>8)%128
	b := 96 + (sum>>16)%128
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// FilterFileEntry is one entry in a filters TOML file, predefining a
// FilterPattern.
type FilterFileEntry struct {
	Pattern       string `toml:"pattern"`
	Mode          string `toml:"mode"` // "include" or "exclude"
	CaseSensitive bool   `toml:"case_sensitive"`
	Enabled       bool   `toml:"enabled"`
}

type filtersFile struct {
	Filters []FilterFileEntry `toml:"filters"`
}

// LoadFilters parses a filters file (-f/--filters) into FilterPatterns.
// Missing files are not an error — filters are simply unpopulated.
func LoadFilters(path string) ([]filter.Pattern, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading filters file: %w", err)
	}
	var doc filtersFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing filters file: %w", err)
	}

	patterns := make([]filter.Pattern, 0, len(doc.Filters))
	for _, e := range doc.Filters {
		mode := filter.Include
		if e.Mode == "exclude" {
			mode = filter.Exclude
		}
		patterns = append(patterns, filter.Pattern{
			Pattern:       e.Pattern,
			Mode:          mode,
			CaseSensitive: e.CaseSensitive,
			Enabled:       e.Enabled,
			FromFile:      true,
		})
	}
	return patterns, nil
}
