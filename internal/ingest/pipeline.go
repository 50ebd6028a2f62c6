// Package ingest implements the live stdin-to-buffer pipeline: a blocking
// reader thread, a batching processor task, and a channel of batches
// delivered to the UI task.
package ingest

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lazylog/lazylog/internal/filter"
)

// ProcessedLine is a streamed line enriched with its pass/fail verdict
// against the filter context in effect when it was batched, computed off
// the UI thread so a redraw never costs more than O(batch).
type ProcessedLine struct {
	Content      string
	PassesFilter bool
}

// Context carries the state the processor needs to precompute each line's
// filter verdict. The UI task sends a fresh Context whenever the user
// changes the active filters.
type Context struct {
	FilterPatterns []filter.Pattern
}

const (
	batchSize     = 5
	flushInterval = 100 * time.Millisecond
	rawChanCap    = 4096
)

// Pipeline runs the reader + processor topology. Lines are delivered to the
// UI task, in arrival order, over Out().
type Pipeline struct {
	rawTx     chan string
	contextTx chan Context
	out       chan []ProcessedLine
	done      chan struct{}
}

// New starts the reader and processor goroutines against r (normally
// os.Stdin) and returns the running Pipeline. Call Stop to shut it down.
func New(r io.Reader, initial Context) *Pipeline {
	p := &Pipeline{
		rawTx:     make(chan string, rawChanCap),
		contextTx: make(chan Context, 1),
		out:       make(chan []ProcessedLine, 1),
		done:      make(chan struct{}),
	}
	go p.readLoop(r)
	go p.processLoop(initial)
	return p
}

// Out returns the channel of processed-line batches, in the order they
// should be folded into the log buffer.
func (p *Pipeline) Out() <-chan []ProcessedLine { return p.out }

// SetContext pushes a new filter context to the processor, superseding any
// context update still pending. Never blocks.
func (p *Pipeline) SetContext(c Context) {
	for {
		select {
		case p.contextTx <- c:
			return
		case <-p.done:
			return
		default:
		}
		select {
		case <-p.contextTx:
		default:
		}
	}
}

// Stop signals both goroutines to exit. Any in-flight batch is discarded.
func (p *Pipeline) Stop() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

// readLoop is the blocking OS-thread-equivalent: it reads stdin line by
// line and pushes each onto rawTx, closing it on EOF or read error.
func (p *Pipeline) readLoop(r io.Reader) {
	defer close(p.rawTx)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "�")
		select {
		case p.rawTx <- line:
		case <-p.done:
			return
		}
	}
}

// processLoop implements the biased-select priority order from the design:
// shutdown, then context update, then tick-flush, then line arrival. Go's
// select has no biased variant, so each iteration runs a sequence of
// non-blocking checks in priority order before falling back to a single
// blocking select across all four.
func (p *Pipeline) processLoop(ctx Context) {
	defer close(p.out)

	batch := make([]string, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	rawOpen := true

	for {
		select {
		case <-p.done:
			return
		default:
		}

		select {
		case c, ok := <-p.contextTx:
			if ok {
				ctx = c
			}
			continue
		default:
		}

		select {
		case <-ticker.C:
			batch = p.flush(batch, ctx)
			continue
		default:
		}

		if !rawOpen && len(batch) == 0 {
			return
		}

		select {
		case <-p.done:
			return
		case c, ok := <-p.contextTx:
			if ok {
				ctx = c
			}
		case <-ticker.C:
			batch = p.flush(batch, ctx)
		case line, ok := <-p.rawTx:
			if !ok {
				rawOpen = false
				batch = p.flush(batch, ctx)
				continue
			}
			batch = append(batch, line)
			if len(batch) >= batchSize {
				batch = p.flush(batch, ctx)
			}
		}
	}
}

// flush computes each line's filter verdict in parallel and delivers the
// batch, returning the batch slice reset to length 0 for reuse.
func (p *Pipeline) flush(batch []string, ctx Context) []string {
	if len(batch) == 0 {
		return batch
	}
	results := filterBatch(batch, ctx.FilterPatterns)
	processed := make([]ProcessedLine, len(batch))
	for i, line := range batch {
		processed[i] = ProcessedLine{Content: line, PassesFilter: results[i]}
	}
	select {
	case p.out <- processed:
	case <-p.done:
	}
	return batch[:0]
}

// filterBatch computes Apply(line, patterns) for every line, preserving
// index order, via a parallel chunked map run on an errgroup.
func filterBatch(lines []string, patterns []filter.Pattern) []bool {
	results := make([]bool, len(lines))
	if len(lines) == 0 {
		return results
	}
	g, _ := errgroup.WithContext(context.Background())
	const chunkSize = 2048
	for start := 0; start < len(lines); start += chunkSize {
		start := start
		end := start + chunkSize
		if end > len(lines) {
			end = len(lines)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				results[i] = filter.Apply(lines[i], patterns)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
