// Command lazylog is an interactive terminal viewer for large, possibly
// multi-file, possibly live-streamed log corpora.
package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	isatty "github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lazylog/lazylog/internal/app"
	"github.com/lazylog/lazylog/internal/config"
	"github.com/lazylog/lazylog/internal/event"
	"github.com/lazylog/lazylog/internal/filter"
	"github.com/lazylog/lazylog/internal/highlight"
	"github.com/lazylog/lazylog/internal/ingest"
	"github.com/lazylog/lazylog/internal/logging"
	"github.com/lazylog/lazylog/internal/logline"
	"github.com/lazylog/lazylog/internal/persistence"
	"github.com/lazylog/lazylog/internal/tui"
)

var (
	configPath  string
	filtersPath string
	clearState  bool
	noPersist   bool
	debugPath   string
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			app.WriteCrashLog(r, "main")
			os.Exit(1)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lazylog:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lazylog [files...]",
		Short:        "Interactive terminal viewer for large and live log corpora",
		Version:      version(),
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&filtersPath, "filters", "f", "", "predefined filters file")
	cmd.Flags().BoolVar(&clearState, "clear-state", false, "wipe persisted per-file session state and exit")
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "do not read or write session state")
	cmd.Flags().StringVar(&debugPath, "debug", "", "enable debug logging to FILE")
	return cmd
}

func version() string { return "0.1.0" }

func run(cmd *cobra.Command, args []string) error {
	if clearState {
		msg, err := persistence.ClearAll()
		if err != nil {
			return fmt.Errorf("clearing state: %w", err)
		}
		fmt.Println(msg)
		return nil
	}

	logger, cleanup, err := logging.Setup(logging.Config{
		Level:    os.Getenv("RUST_LOG"),
		FilePath: debugPath,
	})
	if err != nil {
		return fmt.Errorf("opening debug log: %w", err)
	}
	defer cleanup()

	cfg, cfgOK := config.Load(configPath)
	if !cfgOK && configPath != "" {
		fmt.Fprintf(os.Stderr, "warning: could not load config %s, using defaults\n", configPath)
	}
	highlightPatterns, eventPatterns := buildPatternsFromConfig(cfg)

	predefinedFilters, err := config.LoadFilters(filtersPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	buf, loadResult, streaming, err := loadInput(args)
	if err != nil {
		return err
	}

	m := app.New(buf, highlightPatterns, eventPatterns)
	m.Logger = logger
	m.Persist = !noPersist
	m.GapThreshold = cfg.GapThreshold()
	m.RecomputeSeparators()
	m.SetFileCount(len(args))
	for _, p := range predefinedFilters {
		m.Filter.Add(p)
	}
	m.SkippedNoTS = loadResult.SkippedNoTimestamp
	if m.SkippedNoTS > 0 {
		m.SetToast(fmt.Sprintf("%d line(s) skipped (no timestamp)", m.SkippedNoTS), true)
	}
	if len(loadResult.FailedFiles) > 0 {
		m.Err = fileOpenError(loadResult.FailedFiles)
		m.Mode = app.ModeErrorOverlay
	}
	if len(args) == 1 {
		m.LogFilePath = args[0]
	}
	m.RebuildRules()

	if streaming {
		pipeline := ingest.New(os.Stdin, ingest.Context{FilterPatterns: m.Filter.Patterns()})
		m.Pipeline = pipeline
		m.Viewport.FollowMode = true
	}

	if m.Persist && m.LogFilePath != "" {
		if state, ok := persistence.Load(m.LogFilePath); ok {
			tui.Restore(m, state)
		}
	}

	program := tea.NewProgram(tui.New(m), tea.WithAltScreen())

	if filtersPath != "" {
		stop, err := config.WatchFilters(filtersPath, func(patterns []filter.Pattern) {
			program.Send(app.FiltersReloadedMsg{Patterns: patterns})
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not watch filters file: %v\n", err)
		} else {
			defer stop()
		}
	}

	_, err = program.Run()
	return err
}

// loadInput resolves the CLI's positional file arguments (or stdin) into a
// LogBuffer, per §6: zero paths with a piped stdin means streaming mode.
// A per-file open/read failure is reported in the returned LoadResult rather
// than as an error, as long as at least one path loaded (FileOpenError).
func loadInput(paths []string) (buf *logline.Buffer, result logline.LoadResult, streaming bool, err error) {
	if len(paths) == 0 {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			return nil, logline.LoadResult{}, false, fmt.Errorf("no files given and stdin is a terminal")
		}
		return logline.New(true), logline.LoadResult{}, true, nil
	}

	b, result, err := logline.LoadFiles(paths)
	if err != nil {
		return nil, result, false, fmt.Errorf("loading input: %w", err)
	}
	return b, result, false, nil
}

// fileOpenError summarizes one or more unreadable input files into a single
// error for the startup Error overlay.
func fileOpenError(failed []logline.FileError) error {
	if len(failed) == 1 {
		return fmt.Errorf("could not open %s: %w", failed[0].Path, failed[0].Err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d files could not be opened:", len(failed))
	for _, f := range failed {
		fmt.Fprintf(&sb, "\n  %s: %v", f.Path, f.Err)
	}
	return errors.New(sb.String())
}

// buildPatternsFromConfig turns config.toml's highlight_patterns into span
// styles and its line_colors into whole-line event patterns — per spec.md
// §6, line_colors ARE the Highlighter's events, and per §4.7 every
// EventPattern (built-in or config-defined) is also tracked by the Event
// Tracker for counting and navigation.
func buildPatternsFromConfig(cfg config.Config) ([]highlight.Pattern, []event.Pattern) {
	highlightPatterns := make([]highlight.Pattern, 0, len(cfg.HighlightPatterns))
	for _, hp := range cfg.HighlightPatterns {
		color := hp.Color
		if color == "" {
			color = config.DeriveColor(hp.Pattern)
		}
		highlightPatterns = append(highlightPatterns, highlight.Pattern{
			Name:    hp.Pattern,
			Matcher: buildMatcher(hp.Pattern, hp.Regex),
			Style:   highlight.PatternStyle{FgColor: color},
		})
	}

	eventPatterns := make([]event.Pattern, 0, len(cfg.LineColors))
	for _, lc := range cfg.LineColors {
		color := lc.Color
		if color == "" {
			color = config.DeriveColor(lc.Pattern)
		}
		eventPatterns = append(eventPatterns, event.Pattern{
			Name:    lc.Pattern,
			Matcher: buildMatcher(lc.Pattern, lc.Regex),
			Enabled: true,
			Color:   color,
		})
	}
	return highlightPatterns, eventPatterns
}

func buildMatcher(pattern string, isRegex bool) event.Matcher {
	if isRegex {
		if re, err := regexp.Compile(pattern); err == nil {
			return event.RegexMatcher{Re: re}
		}
	}
	return event.PlainMatcher{Pattern: pattern}
}
