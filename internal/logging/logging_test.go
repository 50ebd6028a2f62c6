package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSetupWithEmptyPathDiscardsOutput(t *testing.T) {
	logger, cleanup, err := Setup(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	logger.Info("this should go nowhere")
}

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, cleanup, err := Setup(Config{Level: "debug", FilePath: path})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello", "key", "value")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("expected JSON log line, got %q", data)
	}
	if !strings.Contains(string(data), `"key":"value"`) {
		t.Fatalf("expected attrs in log line, got %q", data)
	}
}

func TestSetupRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, cleanup, err := Setup(Config{Level: "warn", FilePath: path})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("should be filtered out")
	logger.Warn("should appear")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "should be filtered out") {
		t.Fatal("info-level record leaked through a warn-level handler")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Fatal("expected the warn-level record to be written")
	}
}

func TestRecoverAndLogCapturesPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, cleanup, err := Setup(Config{Level: "debug", FilePath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	var wg sync.WaitGroup
	wg.Add(1)
	RecoverAndLog(logger, "test-goroutine", func() {
		defer wg.Done()
		panic("boom")
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for panicking goroutine")
	}

	// Give the deferred recover a moment to run after wg.Done, since
	// wg.Done fires before the recover completes writing the log.
	time.Sleep(50 * time.Millisecond)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "goroutine panic") {
		t.Fatalf("expected a crash record, got %q", data)
	}
	if !strings.Contains(string(data), "test-goroutine") {
		t.Fatalf("expected goroutine name in record, got %q", data)
	}
}
