// Package syncer dispatches store sync passes in response to connectivity,
// identity, and remote-change events.
//
// The orchestrator runs as a lifecycle worker. External callbacks only
// enqueue triggers; the run loop serializes all dispatching, so no two
// trigger handlers ever run concurrently.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/silt/pkg/core"
)

// DefaultGuardWindow is how recently a store must have synced for a
// remote-change trigger to be ignored. The store's own pushes echo back as
// remote changes; without the guard a sync would trigger itself forever.
const DefaultGuardWindow = time.Second

const defaultDebounce = 200 * time.Millisecond

// Target is one entity store the orchestrator drives.
type Target interface {
	// Kind is the remote collection the target owns.
	Kind() string

	// Sync reconciles the target with its remote collection.
	Sync(ctx context.Context) error

	// LastSync is the Unix-millis stamp of the last completed pass.
	LastSync() int64
}

// Config assembles the orchestrator's collaborators.
type Config struct {
	Targets      []Target
	Remote       core.Remote
	Connectivity core.Connectivity
	Identity     core.Identity

	// GuardWindow defaults to DefaultGuardWindow when zero.
	GuardWindow time.Duration

	Logger *slog.Logger
}

type triggerKind int

const (
	triggerOnline triggerKind = iota
	triggerIdentity
	triggerRemote
)

type trigger struct {
	kind       triggerKind
	collection string // set for triggerRemote
}

// Orchestrator reacts to connectivity-regained, identity-changed, and
// remote-change events by invoking each target's Sync.
type Orchestrator struct {
	*worker.BaseWorker

	cfg       Config
	triggers  chan trigger
	debouncer *debouncer
	cancel    context.CancelFunc

	mu        sync.Mutex
	unsubs    []core.Unsubscribe
	listeners []core.Unsubscribe
}

// New creates an orchestrator. It does nothing until started.
func New(cfg Config) (*Orchestrator, error) {
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no sync targets")
	}
	if cfg.Remote == nil || cfg.Connectivity == nil || cfg.Identity == nil {
		return nil, fmt.Errorf("missing collaborator")
	}
	if cfg.GuardWindow <= 0 {
		cfg.GuardWindow = DefaultGuardWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Orchestrator{
		BaseWorker: worker.NewBaseWorker("sync-orchestrator"),
		cfg:        cfg,
		triggers:   make(chan trigger, 64),
	}, nil
}

// Start subscribes to all event sources and runs the dispatch loop.
func (o *Orchestrator) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := o.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("orchestrator already started (status: %s)", status)
	}

	o.debouncer = newDebouncer(defaultDebounce)

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.mu.Lock()
	o.unsubs = append(o.unsubs,
		o.cfg.Connectivity.OnChange(func(online bool) {
			if online {
				o.enqueue(trigger{kind: triggerOnline})
			}
		}),
		o.cfg.Identity.OnChange(func(u core.User, ok bool) {
			o.resubscribe(runCtx)
			if ok {
				o.enqueue(trigger{kind: triggerIdentity})
			}
		}),
	)
	o.mu.Unlock()
	o.resubscribe(runCtx)

	// Catch up on anything left pending by a previous run.
	lifecycle.Go(runCtx, func(ctx context.Context) error {
		o.syncAll(ctx, "startup")
		return nil
	})

	o.SetStatus(worker.StatusRunning)
	return o.StartFunc(runCtx, o.run)
}

// Stop tears down all subscriptions and stops the worker.
func (o *Orchestrator) Stop(ctx context.Context) error {
	if o.cancel != nil {
		o.StopRequested = true
		o.cancel()
	}
	return o.BaseWorker.Stop(ctx)
}

// State implements the lifecycle worker contract.
func (o *Orchestrator) State() worker.State {
	return o.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (o *Orchestrator) run(ctx context.Context) error {
	defer o.teardown()

	for {
		select {
		case <-ctx.Done():
			o.debouncer.stopAndWait(5 * time.Second)
			return nil
		case t := <-o.triggers:
			o.dispatch(ctx, t)
		}
	}
}

// enqueue registers a trigger with the debouncer. The channel send is
// non-blocking: a full queue drops the trigger, and the next event (or the
// next sync pass) covers for it.
func (o *Orchestrator) enqueue(t trigger) {
	key := fmt.Sprintf("%d/%s", t.kind, t.collection)
	o.debouncer.add(key, func() {
		select {
		case o.triggers <- t:
		default:
		}
	})
}

func (o *Orchestrator) dispatch(ctx context.Context, t trigger) {
	switch t.kind {
	case triggerOnline:
		o.syncAll(ctx, "connectivity")
	case triggerIdentity:
		o.syncAll(ctx, "identity")
	case triggerRemote:
		for _, target := range o.cfg.Targets {
			if target.Kind() != t.collection {
				continue
			}
			if o.withinGuard(target) {
				o.cfg.Logger.Debug("remote change within guard window, skipping",
					"collection", t.collection)
				return
			}
			o.syncOne(ctx, target, "remote change")
			return
		}
	}
}

func (o *Orchestrator) syncAll(ctx context.Context, reason string) {
	for _, target := range o.cfg.Targets {
		o.syncOne(ctx, target, reason)
	}
}

func (o *Orchestrator) syncOne(ctx context.Context, target Target, reason string) {
	if err := target.Sync(ctx); err != nil {
		o.cfg.Logger.Warn("sync failed", "collection", target.Kind(), "reason", reason, "error", err)
		return
	}
	o.cfg.Logger.Debug("sync dispatched", "collection", target.Kind(), "reason", reason)
}

// withinGuard reports whether the target synced recently enough that a
// remote-change trigger is most likely the echo of its own write.
func (o *Orchestrator) withinGuard(target Target) bool {
	last := target.LastSync()
	if last == 0 {
		return false
	}
	return core.NowMillis()-last < o.cfg.GuardWindow.Milliseconds()
}

// resubscribe tears down the current remote subscriptions and, when an
// identity is present, opens one per target scoped to its uid. With no
// identity there is no active subscription at all.
func (o *Orchestrator) resubscribe(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, unsub := range o.listeners {
		unsub()
	}
	o.listeners = nil

	u, ok := o.cfg.Identity.Current()
	if !ok || u.UID == "" {
		return
	}

	for _, target := range o.cfg.Targets {
		col := o.cfg.Remote.Collection(target.Kind())
		unsub, err := col.Subscribe(ctx, u.UID, func(ch core.RemoteChange) {
			o.enqueue(trigger{kind: triggerRemote, collection: ch.Collection})
		})
		if err != nil {
			o.cfg.Logger.Warn("failed to subscribe", "collection", target.Kind(), "error", err)
			continue
		}
		o.listeners = append(o.listeners, unsub)
	}
}

func (o *Orchestrator) teardown() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, unsub := range o.listeners {
		unsub()
	}
	o.listeners = nil
	for _, unsub := range o.unsubs {
		unsub()
	}
	o.unsubs = nil
}
