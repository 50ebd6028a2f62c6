package ingest

import (
	"io"
	"runtime"
	"testing"
	"time"
)

// TestStopReleasesPipelineGoroutines guards against the reader/processor
// goroutines outliving Stop, the failure mode that produced the teacher's
// goroutine-accumulation crash.
func TestStopReleasesPipelineGoroutines(t *testing.T) {
	runtime.GC()
	time.Sleep(10 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	const pipelines = 20
	for i := 0; i < pipelines; i++ {
		r, w := io.Pipe()
		p := New(r, Context{})
		w.Close()
		p.Stop()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	current := runtime.NumGoroutine()

	if current > baseline+5 {
		t.Errorf("potential goroutine leak: baseline=%d, current=%d after %d start/stop cycles", baseline, current, pipelines)
	}
}
