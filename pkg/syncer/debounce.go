package syncer

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers per key. The last fn registered
// for a key before the wait elapses is the one that fires.
type debouncer struct {
	wait time.Duration

	mu      sync.Mutex
	stopped bool
	timers  map[string]*time.Timer
	fns     map[string]func()
	wg      sync.WaitGroup
}

func newDebouncer(wait time.Duration) *debouncer {
	return &debouncer{
		wait:   wait,
		timers: make(map[string]*time.Timer),
		fns:    make(map[string]func()),
	}
}

func (d *debouncer) add(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.fns[key] = fn
	if t, ok := d.timers[key]; ok {
		t.Reset(d.wait)
		return
	}
	d.wg.Add(1)
	d.timers[key] = time.AfterFunc(d.wait, func() { d.fire(key) })
}

func (d *debouncer) fire(key string) {
	d.mu.Lock()
	fn, ok := d.fns[key]
	if ok {
		delete(d.timers, key)
		delete(d.fns, key)
	}
	d.mu.Unlock()

	if !ok {
		// Timer raced a concurrent fire for the same key.
		return
	}
	if fn != nil {
		fn()
	}
	d.wg.Done()
}

// stopAndWait stops accepting new triggers and waits (bounded) for
// in-flight timers to complete, so shutdown never races a late callback.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			delete(d.timers, key)
			delete(d.fns, key)
			d.wg.Done()
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
