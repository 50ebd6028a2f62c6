package logging

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
)

// RecoverAndLog runs fn in a new goroutine, logging (rather than crashing
// the process) if it panics. name identifies the goroutine in the log
// record so a panic in, say, the ingest pipeline is distinguishable from
// one in the render loop.
func RecoverAndLog(logger *slog.Logger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logCrash(logger, name, r)
			}
		}()
		fn()
	}()
}

func logCrash(logger *slog.Logger, goroutineName string, r interface{}) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	logger.ErrorContext(context.Background(), "goroutine panic",
		slog.String("goroutine", goroutineName),
		slog.Any("panic", r),
		slog.String("stack", string(debug.Stack())),
		slog.Int("num_goroutine", runtime.NumGoroutine()),
		slog.Uint64("mem_alloc_bytes", mem.Alloc),
	)
}
