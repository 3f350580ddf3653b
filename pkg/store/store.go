// Package store implements the generic offline-first entity store engine.
//
// A Store owns the local authoritative copy of one entity kind, tracks
// unconfirmed local edits in a pending ledger, and reconciles with a remote
// collection during Sync. Save and Delete never read remote state; Sync is
// the only place local truth and remote truth meet.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/silt/pkg/core"
)

// PendingChange records the timestamp of the last unconfirmed local
// mutation for one entity. Presence of a ledger entry means the local state
// has not been confirmed written to remote since that timestamp.
type PendingChange struct {
	Timestamp int64 `json:"timestamp"`
}

// Snapshot is the unit of local persistence: the full store state,
// marshalled as one JSON blob under the store's kind key and swapped
// atomically on every state transition.
type Snapshot[E any] struct {
	Entities map[string]E             `json:"entities"`
	Pending  map[string]PendingChange `json:"pendingChanges"`
	LastSync int64                    `json:"lastSyncTimestamp"`
}

// Document is the remote wire form of an entity, tagged with its owner.
type Document[E any] struct {
	OwnerID string `json:"ownerId"`
	Entity  E      `json:"entity"`
}

// Deps are the collaborators a store needs. All are required except Logger.
type Deps struct {
	Local        core.LocalStore
	Remote       core.Collection
	Connectivity core.Connectivity
	Identity     core.Identity
	Logger       *slog.Logger
}

// Store is the generic entity store engine, instantiated per entity kind
// via a Schema. All mutating operations serialize through a per-store
// mutex, so a Save can never race a Sync into a lost update.
type Store[E any, P any] struct {
	schema Schema[E, P]
	local  core.LocalStore
	remote core.Collection
	net    core.Connectivity
	id     core.Identity
	logger *slog.Logger

	mu   sync.RWMutex
	snap Snapshot[E]
}

// New creates a store and restores its snapshot from the local store.
// A missing or unreadable snapshot starts the store empty; the local copy
// is rebuilt on the next persist.
func New[E any, P any](schema Schema[E, P], deps Deps) (*Store[E, P], error) {
	if schema.Kind == "" {
		return nil, fmt.Errorf("schema has no kind")
	}
	if deps.Local == nil || deps.Remote == nil || deps.Connectivity == nil || deps.Identity == nil {
		return nil, fmt.Errorf("store %s: missing collaborator", schema.Kind)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Store[E, P]{
		schema: schema,
		local:  deps.Local,
		remote: deps.Remote,
		net:    deps.Connectivity,
		id:     deps.Identity,
		logger: deps.Logger,
		snap: Snapshot[E]{
			Entities: make(map[string]E),
			Pending:  make(map[string]PendingChange),
		},
	}
	s.restore(context.Background())
	return s, nil
}

// Kind returns the entity kind (collection name) this store owns.
func (s *Store[E, P]) Kind() string { return s.schema.Kind }

// Save applies a partial update locally, marks the entity pending, and
// attempts a best-effort push to remote. It resolves once local state is
// committed; push failures never fail the operation.
//
// A save always resurrects: the resulting entity is active even if it was
// soft-deleted before.
func (s *Store[E, P]) Save(ctx context.Context, patch P) (E, error) {
	var zero E
	id := s.schema.PatchID(patch)
	if id == "" {
		return zero, &core.ValidationError{Field: "id", Reason: "required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := core.NowMillis()
	existing, ok := s.snap.Entities[id]
	if !ok {
		existing = s.schema.New(id)
	}

	next, err := s.schema.Apply(existing, patch, now)
	if err != nil {
		return zero, err
	}

	env := s.schema.Envelope(&next)
	env.ID = id
	env.State = core.StateActive
	env.UpdatedAt = now
	if env.CreatedAt == 0 {
		env.CreatedAt = now
	}

	s.snap.Entities[id] = next
	s.snap.Pending[id] = PendingChange{Timestamp: now}
	s.persist(ctx)

	s.push(ctx, id, next)
	return next, nil
}

// Delete soft-deletes an entity. Unknown ids are a clean no-op.
//
// The tombstone is a patch, not a record reset: content fields survive so a
// later field-level merge still has local values to compare against.
func (s *Store[E, P]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.snap.Entities[id]
	if !ok {
		return nil
	}

	now := core.NowMillis()
	env := s.schema.Envelope(&e)
	env.State = core.StateDeleted
	env.UpdatedAt = now

	s.snap.Entities[id] = e
	s.snap.Pending[id] = PendingChange{Timestamp: now}
	s.persist(ctx)

	s.push(ctx, id, e)
	return nil
}

// Sync reconciles local and remote state. It silently no-ops when offline
// or unauthenticated. A fetch failure aborts the pass with state unchanged;
// per-record push failures are isolated and logged.
func (s *Store[E, P]) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.net.Online(ctx) {
		return nil
	}
	u, ok := s.id.Current()
	if !ok || u.UID == "" {
		return nil
	}

	docs, err := s.remote.QueryByOwner(ctx, u.UID)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %v", core.ErrRemoteUnavailable, s.schema.Kind, err)
	}

	now := core.NowMillis()
	merged := make(map[string]E, len(s.snap.Entities))
	for id, e := range s.snap.Entities {
		merged[id] = e
	}

	for id, raw := range docs {
		var doc Document[E]
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.logger.Warn("skipping undecodable remote document", "kind", s.schema.Kind, "id", id, "error", err)
			continue
		}
		remote := doc.Entity

		local, ok := merged[id]
		if !ok {
			merged[id] = remote
			continue
		}

		lenv := s.schema.Envelope(&local)
		if _, pending := s.snap.Pending[id]; pending && lenv.State == core.StateDeleted {
			// A locally pending deletion wins unconditionally; incoming
			// syncs never resurrect tombstones.
			continue
		}

		renv := s.schema.Envelope(&remote)
		m := s.schema.Policy.Merge(local, remote)
		menv := s.schema.Envelope(&m)
		menv.ID = id
		if lenv.State == core.StateDeleted || renv.State == core.StateDeleted {
			menv.State = core.StateDeleted
		} else {
			menv.State = core.StateActive
		}
		// The merged stamp is the newer of the two sides, never a fresh
		// clock read: syncing unchanged data must produce identical bytes.
		menv.UpdatedAt = max(lenv.UpdatedAt, renv.UpdatedAt)
		menv.CreatedAt = firstWrite(lenv.CreatedAt, renv.CreatedAt)
		merged[id] = m
	}

	// Push back everything remote is missing or holds a different copy of.
	// Skipping byte-identical records keeps a quiet sync from echoing
	// through other devices' change listeners.
	for id, e := range merged {
		data, err := json.Marshal(Document[E]{OwnerID: u.UID, Entity: e})
		if err != nil {
			s.logger.Error("failed to encode record", "kind", s.schema.Kind, "id", id, "error", err)
			continue
		}
		if raw, ok := docs[id]; ok && bytes.Equal(raw, data) {
			continue
		}
		if err := s.remote.Write(ctx, id, data); err != nil {
			s.logger.Warn("failed to push record", "kind", s.schema.Kind, "id", id, "error", err)
			continue
		}
	}

	s.snap.Entities = merged
	s.snap.Pending = make(map[string]PendingChange)
	s.snap.LastSync = now
	s.persist(ctx)

	s.logger.Debug("sync complete", "kind", s.schema.Kind, "entities", len(merged))
	return nil
}

// Get returns the entity with the given id, deleted or not.
func (s *Store[E, P]) Get(id string) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.snap.Entities[id]
	return e, ok
}

// Active returns all entities whose state is active. Ordering follows map
// iteration; callers needing an order sort on top.
func (s *Store[E, P]) Active() []E {
	return s.Find(func(E) bool { return true })
}

// Find returns active entities matching pred.
func (s *Store[E, P]) Find(pred func(E) bool) []E {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []E
	for _, e := range s.snap.Entities {
		if s.schema.Envelope(&e).State != core.StateActive {
			continue
		}
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// Pending returns a copy of the pending-change ledger.
func (s *Store[E, P]) Pending() map[string]PendingChange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]PendingChange, len(s.snap.Pending))
	for id, p := range s.snap.Pending {
		out[id] = p
	}
	return out
}

// LastSync returns the timestamp of the last completed sync pass, in Unix
// millis. Zero means the store never synced.
func (s *Store[E, P]) LastSync() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.LastSync
}

// owner reports whether a best-effort push is possible right now, and for
// which identity.
func (s *Store[E, P]) owner(ctx context.Context) (string, bool) {
	if !s.net.Online(ctx) {
		return "", false
	}
	u, ok := s.id.Current()
	if !ok || u.UID == "" {
		return "", false
	}
	return u.UID, true
}

// push attempts an immediate remote write and clears the pending entry on
// success. Failures keep the ledger entry; the next Sync retries.
// Callers hold the write lock.
func (s *Store[E, P]) push(ctx context.Context, id string, e E) {
	owner, ok := s.owner(ctx)
	if !ok {
		return
	}

	data, err := json.Marshal(Document[E]{OwnerID: owner, Entity: e})
	if err != nil {
		s.logger.Error("failed to encode record", "kind", s.schema.Kind, "id", id, "error", err)
		return
	}
	if err := s.remote.Write(ctx, id, data); err != nil {
		s.logger.Debug("push failed, keeping pending entry", "kind", s.schema.Kind, "id", id, "error", err)
		return
	}

	delete(s.snap.Pending, id)
	s.persist(ctx)
}

// persist writes the snapshot to the local store. A write failure is logged
// and swallowed: in-memory state remains authoritative for the rest of the
// process lifetime.
func (s *Store[E, P]) persist(ctx context.Context) {
	data, err := json.Marshal(s.snap)
	if err != nil {
		s.logger.Error("failed to encode snapshot", "kind", s.schema.Kind, "error", err)
		return
	}
	if err := s.local.Set(ctx, s.schema.Kind, data); err != nil {
		s.logger.Error("failed to persist snapshot", "kind", s.schema.Kind, "error", err)
	}
}

// restore loads the snapshot written by a previous process. Corrupt or
// missing snapshots start the store empty.
func (s *Store[E, P]) restore(ctx context.Context) {
	data, ok, err := s.local.Get(ctx, s.schema.Kind)
	if err != nil {
		s.logger.Warn("failed to read snapshot, starting empty", "kind", s.schema.Kind, "error", err)
		return
	}
	if !ok {
		return
	}

	var snap Snapshot[E]
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("corrupt snapshot, starting empty", "kind", s.schema.Kind, "error", err)
		return
	}
	if snap.Entities == nil {
		snap.Entities = make(map[string]E)
	}
	if snap.Pending == nil {
		snap.Pending = make(map[string]PendingChange)
	}
	s.snap = snap
}

func firstWrite(local, remote int64) int64 {
	switch {
	case local == 0:
		return remote
	case remote == 0:
		return local
	case remote < local:
		return remote
	default:
		return local
	}
}
