package memory

import (
	"context"
	"sync"

	"github.com/aretw0/silt/pkg/core"
)

// Connectivity is a manually driven connectivity signal. It starts offline.
type Connectivity struct {
	mu        sync.Mutex
	online    bool
	watchers  map[int]func(bool)
	nextWatch int
}

// NewConnectivity creates an offline signal.
func NewConnectivity() *Connectivity {
	return &Connectivity{watchers: make(map[int]func(bool))}
}

// Online reports the current state.
func (c *Connectivity) Online(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// SetOnline flips the state and notifies watchers on a transition.
func (c *Connectivity) SetOnline(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	var notify []func(bool)
	for _, fn := range c.watchers {
		notify = append(notify, fn)
	}
	c.mu.Unlock()

	for _, fn := range notify {
		fn(online)
	}
}

// OnChange registers fn for state transitions.
func (c *Connectivity) OnChange(fn func(online bool)) core.Unsubscribe {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextWatch
	c.nextWatch++
	c.watchers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, id)
			c.mu.Unlock()
		})
	}
}
