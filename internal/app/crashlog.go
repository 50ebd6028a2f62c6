package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"
)

// CrashLogPath is where a top-level panic recovered in cmd/lazylog's main
// writes its detailed report. Unlike internal/logging's structured
// RecoverAndLog (meant for background goroutines that can keep the UI
// running), this is the last-resort dump for a panic that took down the
// whole program, so it writes plain text rather than JSON and never
// depends on a *slog.Logger having been set up successfully.
var CrashLogPath = filepath.Join(os.TempDir(), "lazylog-crash.log")

// WriteCrashLog appends a detailed crash report to CrashLogPath and mirrors
// a short notice to stderr. r is the recovered panic value; goroutineName
// identifies where it happened ("main" for the top-level recover).
func WriteCrashLog(r interface{}, goroutineName string) {
	if r == nil {
		return
	}

	f, err := os.OpenFile(CrashLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open crash log: %v\n", err)
		f = os.Stderr
	}
	defer f.Close()

	fmt.Fprintf(f, "\n\n")
	fmt.Fprintf(f, "================================================================\n")
	fmt.Fprintf(f, "CRASH REPORT - %s\n", time.Now().Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(f, "================================================================\n\n")

	if goroutineName != "" {
		fmt.Fprintf(f, "Goroutine: %s\n\n", goroutineName)
	} else {
		fmt.Fprintf(f, "Goroutine: main\n\n")
	}

	fmt.Fprintf(f, "Error: %v\n\n", r)

	fmt.Fprintf(f, "Crashing Goroutine Stack Trace:\n")
	fmt.Fprintf(f, "----------------------------------------------------------------\n")
	f.Write(debug.Stack())
	fmt.Fprintf(f, "\n")

	fmt.Fprintf(f, "All Goroutines Stack Dump:\n")
	fmt.Fprintf(f, "----------------------------------------------------------------\n")
	buf := make([]byte, 1024*1024)
	n := runtime.Stack(buf, true)
	f.Write(buf[:n])
	fmt.Fprintf(f, "\n")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	fmt.Fprintf(f, "System Information:\n")
	fmt.Fprintf(f, "----------------------------------------------------------------\n")
	fmt.Fprintf(f, "Goroutines:       %d\n", runtime.NumGoroutine())
	fmt.Fprintf(f, "Memory Allocated: %d MB\n", m.Alloc/1024/1024)
	fmt.Fprintf(f, "Memory Total:     %d MB\n", m.TotalAlloc/1024/1024)
	fmt.Fprintf(f, "Memory Sys:       %d MB\n", m.Sys/1024/1024)
	fmt.Fprintf(f, "GC Runs:          %d\n", m.NumGC)
	fmt.Fprintf(f, "================================================================\n\n")

	if f != os.Stderr {
		fmt.Fprintf(os.Stderr, "\nfatal error: %v\n", r)
		fmt.Fprintf(os.Stderr, "full crash report saved to: %s\n", CrashLogPath)
	}
}
