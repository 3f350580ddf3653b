package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/silt/pkg/core"
)

// Remote is an in-memory remote backend. Sharing one Remote between two
// workspaces simulates two devices syncing through the same service.
type Remote struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

// NewRemote creates an empty remote backend.
func NewRemote() *Remote {
	return &Remote{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it on first use.
func (r *Remote) Collection(name string) core.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[name]
	if !ok {
		c = &Collection{
			name:        name,
			docs:        make(map[string][]byte),
			owners:      make(map[string]string),
			subscribers: make(map[int]subscriber),
		}
		r.collections[name] = c
	}
	return c
}

type subscriber struct {
	ownerID string
	fn      func(core.RemoteChange)
}

// Collection is one in-memory document collection.
type Collection struct {
	name string

	mu          sync.Mutex
	docs        map[string][]byte // doc id -> raw document
	owners      map[string]string // doc id -> owner uid
	subscribers map[int]subscriber
	nextSub     int

	failWrites  bool
	failQueries bool
}

// ownerProbe extracts just the owner field from a raw document.
type ownerProbe struct {
	OwnerID string `json:"ownerId"`
}

// Write stores doc under id and notifies subscribers for its owner.
func (c *Collection) Write(ctx context.Context, id string, doc []byte) error {
	var probe ownerProbe
	if err := json.Unmarshal(doc, &probe); err != nil {
		return fmt.Errorf("invalid document for %s/%s: %w", c.name, id, err)
	}

	c.mu.Lock()
	if c.failWrites {
		c.mu.Unlock()
		return fmt.Errorf("collection %s: %w", c.name, core.ErrRemoteUnavailable)
	}
	c.docs[id] = append([]byte(nil), doc...)
	c.owners[id] = probe.OwnerID

	change := core.RemoteChange{
		Collection: c.name,
		ID:         id,
		OwnerID:    probe.OwnerID,
		Timestamp:  core.NowMillis(),
	}
	var notify []func(core.RemoteChange)
	for _, sub := range c.subscribers {
		if sub.ownerID == probe.OwnerID {
			notify = append(notify, sub.fn)
		}
	}
	c.mu.Unlock()

	// Deliver outside the lock so a callback may call back into the
	// collection.
	for _, fn := range notify {
		fn(change)
	}
	return nil
}

// QueryByOwner returns every document belonging to ownerID, keyed by id.
func (c *Collection) QueryByOwner(ctx context.Context, ownerID string) (map[string][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failQueries {
		return nil, fmt.Errorf("collection %s: %w", c.name, core.ErrRemoteUnavailable)
	}

	out := make(map[string][]byte)
	for id, owner := range c.owners {
		if owner == ownerID {
			out[id] = append([]byte(nil), c.docs[id]...)
		}
	}
	return out, nil
}

// Subscribe registers fn for writes to ownerID's documents.
func (c *Collection) Subscribe(ctx context.Context, ownerID string, fn func(core.RemoteChange)) (core.Unsubscribe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = subscriber{ownerID: ownerID, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}, nil
}

// FailWrites makes every subsequent Write return ErrRemoteUnavailable.
func (c *Collection) FailWrites(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWrites = fail
}

// FailQueries makes every subsequent QueryByOwner return ErrRemoteUnavailable.
func (c *Collection) FailQueries(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failQueries = fail
}
