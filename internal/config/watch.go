package config

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lazylog/lazylog/internal/filter"
)

// WatchFilters watches path for writes and invokes onChange with the
// freshly reparsed filter set after each one, debounced so a burst of
// writes only triggers a single reload. Only Write and Create events are
// acted on; Rename and Remove events are ignored.
// The returned stop function releases the watcher; errors from a failed
// reparse are swallowed — a malformed file mid-edit simply keeps the prior
// filter set until it becomes valid again.
func WatchFilters(path string, onChange func([]filter.Pattern)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		const debounce = 150 * time.Millisecond
		var timer *time.Timer
		for {
			select {
			case <-done:
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if patterns, err := LoadFilters(path); err == nil {
						onChange(patterns)
					}
				})
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
