// Package logline owns the append-only store of parsed log lines.
package logline

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/lazylog/lazylog/internal/timestamp"
)

// Line is a single immutable text record. Once appended to a Buffer, its
// Index and Content never change.
type Line struct {
	Index              int
	Content            string
	Timestamp          time.Time
	HasTimestamp       bool
	FileID             int
	HasFileID          bool
	TimestampInherited bool
}

// Buffer is the owning, append-only sequence of Lines.
type Buffer struct {
	lines     []Line
	Streaming bool
	FilePath  string

	lastTimestamp time.Time
	haveLast      bool
}

// New returns an empty Buffer. Streaming buffers accept AppendLine and Clear;
// file-backed buffers are populated once via Load/LoadFiles and are
// thereafter immutable from the viewer's perspective.
func New(streaming bool) *Buffer {
	return &Buffer{Streaming: streaming}
}

// TotalLines returns the number of stored lines.
func (b *Buffer) TotalLines() int { return len(b.lines) }

// Get returns the line at logIndex, or false if out of range.
func (b *Buffer) Get(logIndex int) (Line, bool) {
	if logIndex < 0 || logIndex >= len(b.lines) {
		return Line{}, false
	}
	return b.lines[logIndex], true
}

// All returns every stored line in index order. Callers must not mutate it.
func (b *Buffer) All() []Line { return b.lines }

// Range returns lines [start, end) clamped to the buffer's bounds.
func (b *Buffer) Range(start, end int) []Line {
	if start < 0 {
		start = 0
	}
	if end > len(b.lines) {
		end = len(b.lines)
	}
	if start >= end {
		return nil
	}
	return b.lines[start:end]
}

// AppendLine parses text for a timestamp (inheriting the previous line's
// timestamp when absent), appends it, and returns its new index. Only valid
// on streaming buffers.
func (b *Buffer) AppendLine(text string) int {
	line := Line{Index: len(b.lines), Content: text}
	if ts, ok := timestamp.Parse(text); ok {
		line.Timestamp = ts
		line.HasTimestamp = true
		b.lastTimestamp = ts
		b.haveLast = true
	} else if b.haveLast {
		line.Timestamp = b.lastTimestamp
		line.HasTimestamp = true
		line.TimestampInherited = true
	}
	b.lines = append(b.lines, line)
	return line.Index
}

// Clear empties a streaming buffer. It is a silent no-op on file-backed
// buffers: on-disk input is immutable from the viewer's perspective.
func (b *Buffer) Clear() {
	if !b.Streaming {
		return
	}
	b.lines = b.lines[:0]
	b.haveLast = false
}

// LoadResult reports the outcome of a file load.
type LoadResult struct {
	SkippedNoTimestamp int
	// FailedFiles lists paths that could not be opened or read, paired with
	// their error. Per the FileOpenError policy, these are skipped rather
	// than fatal as long as at least one path loads successfully.
	FailedFiles []FileError
}

// FileError pairs a path with the error that made it unreadable.
type FileError struct {
	Path string
	Err  error
}

// LoadFile loads a single file. Equivalent to LoadFiles with one path.
func LoadFile(path string) (*Buffer, LoadResult, error) {
	return LoadFiles([]string{path})
}

// LoadFiles reads every path. With more than one path, lines for which no
// timestamp could be parsed are dropped (counted in SkippedNoTimestamp) and
// the combined set is stable-sorted by timestamp. With a single path, lines
// keep file order and a line without a timestamp inherits the previous
// line's (TimestampInherited); lines before the first timestamp carry none.
// Dense indices are then reassigned in place. Each surviving line carries a
// FileID matching the path's position in the argument list.
//
// A path that cannot be opened or read is skipped and recorded in
// result.FailedFiles rather than aborting the whole load (FileOpenError:
// "app continues if at least one file is readable"). LoadFiles only returns
// an error if every path failed.
func LoadFiles(paths []string) (*Buffer, LoadResult, error) {
	b := New(false)
	if len(paths) == 1 {
		b.FilePath = paths[0]
	}
	var result LoadResult
	var collected []Line
	multi := len(paths) > 1

	for fileID, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			result.FailedFiles = append(result.FailedFiles, FileError{Path: path, Err: err})
			continue
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		var prevTS time.Time
		havePrev := false
		for scanner.Scan() {
			text := scanner.Text()
			line := Line{Content: text, FileID: fileID, HasFileID: true}
			if ts, ok := timestamp.Parse(text); ok {
				line.Timestamp = ts
				line.HasTimestamp = true
				prevTS = ts
				havePrev = true
			} else if multi {
				result.SkippedNoTimestamp++
				continue
			} else if havePrev {
				line.Timestamp = prevTS
				line.HasTimestamp = true
				line.TimestampInherited = true
			}
			collected = append(collected, line)
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			result.FailedFiles = append(result.FailedFiles, FileError{Path: path, Err: err})
			continue
		}
		f.Close()
	}

	if len(result.FailedFiles) == len(paths) {
		return nil, result, fmt.Errorf("opening %s: %w", paths[0], result.FailedFiles[0].Err)
	}

	if multi {
		sort.SliceStable(collected, func(i, j int) bool {
			return collected[i].Timestamp.Before(collected[j].Timestamp)
		})
	}
	for i := range collected {
		collected[i].Index = i
	}
	b.lines = collected
	if len(collected) > 0 && collected[len(collected)-1].HasTimestamp {
		last := collected[len(collected)-1]
		b.lastTimestamp = last.Timestamp
		b.haveLast = true
	}
	return b, result, nil
}

// SaveToFile writes every line's content, one per line, in index order.
func (b *Buffer) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, line := range b.lines {
		if _, err := w.WriteString(line.Content); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return w.Flush()
}

// FindClosest returns the index of the line whose index is nearest to
// target, among indices in candidates (assumed sorted ascending). Ties are
// broken toward the earlier (smaller) candidate.
func FindClosest(candidates []int, target int) (int, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	best := candidates[0]
	bestDist := abs(best - target)
	for _, c := range candidates[1:] {
		d := abs(c - target)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
