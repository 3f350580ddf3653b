package fs

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/aretw0/silt/pkg/core"
)

// DefaultPollInterval is how often the monitor re-checks the remote path.
const DefaultPollInterval = 2 * time.Second

// Monitor derives connectivity from the presence of the remote directory.
// An unmounted network share or removed drive reads as offline.
type Monitor struct {
	path     string
	interval time.Duration

	mu        sync.Mutex
	online    bool
	watchers  map[int]func(bool)
	nextWatch int
	cancel    context.CancelFunc
}

// NewMonitor creates a monitor for path. It does not poll until started.
func NewMonitor(path string, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		path:     path,
		interval: interval,
		watchers: make(map[int]func(bool)),
	}
}

// Online checks the remote path directly.
func (m *Monitor) Online(ctx context.Context) bool {
	return m.check()
}

// Start begins polling for connectivity transitions.
func (m *Monitor) Start(ctx context.Context) error {
	pollCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.online = m.check()
	m.mu.Unlock()

	go m.poll(pollCtx)
	return nil
}

// Stop halts polling. Online remains usable afterwards.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// OnChange registers fn for connectivity transitions.
func (m *Monitor) OnChange(fn func(online bool)) core.Unsubscribe {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextWatch
	m.nextWatch++
	m.watchers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers, id)
			m.mu.Unlock()
		})
	}
}

func (m *Monitor) check() bool {
	info, err := os.Stat(m.path)
	return err == nil && info.IsDir()
}

func (m *Monitor) poll(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			online := m.check()

			m.mu.Lock()
			if online == m.online {
				m.mu.Unlock()
				continue
			}
			m.online = online
			var notify []func(bool)
			for _, fn := range m.watchers {
				notify = append(notify, fn)
			}
			m.mu.Unlock()

			for _, fn := range notify {
				fn(online)
			}
		}
	}
}
