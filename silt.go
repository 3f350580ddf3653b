// Package silt is an offline-first synchronization engine for notes, tasks,
// and task boards.
//
// All reads and writes hit local state first; a background orchestrator
// reconciles each store with a remote document service whenever
// connectivity, identity, or remote data changes. The library works fully
// offline: changes queue in a pending ledger and flow out on the next
// successful sync.
package silt

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/silt/internal/platform"
	"github.com/aretw0/silt/pkg/adapters/fs"
	"github.com/aretw0/silt/pkg/adapters/memory"
	"github.com/aretw0/silt/pkg/boards"
	"github.com/aretw0/silt/pkg/notes"
	"github.com/aretw0/silt/pkg/store"
	"github.com/aretw0/silt/pkg/syncer"
	"github.com/aretw0/silt/pkg/tasks"
)

// New assembles a workspace from the given options. With no options it is
// fully in-memory, offline, and signed out, which suits embedding and tests.
func New(opts ...Option) (*Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.local == nil {
		o.local = memory.NewLocalStore()
	}
	if o.remote == nil {
		o.remote = memory.NewRemote()
	}
	if o.connectivity == nil {
		o.connectivity = memory.NewConnectivity()
	}
	if o.identity == nil {
		o.identity = memory.NewIdentity()
	}

	deps := func(kind string) store.Deps {
		return store.Deps{
			Local:        o.local,
			Remote:       o.remote.Collection(kind),
			Connectivity: o.connectivity,
			Identity:     o.identity,
			Logger:       o.logger,
		}
	}

	// Boards come first: the task store validates board references through
	// the lookup, so it needs a live board store at schema time.
	boardStore, err := store.New(boards.Schema(), deps(boards.Kind))
	if err != nil {
		return nil, fmt.Errorf("failed to open board store: %w", err)
	}
	taskStore, err := store.New(tasks.Schema(boardLookup{boardStore}), deps(tasks.Kind))
	if err != nil {
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}
	noteStore, err := store.New(notes.Schema(), deps(notes.Kind))
	if err != nil {
		return nil, fmt.Errorf("failed to open note store: %w", err)
	}

	orch, err := syncer.New(syncer.Config{
		Targets:      []syncer.Target{boardStore, taskStore, noteStore},
		Remote:       o.remote,
		Connectivity: o.connectivity,
		Identity:     o.identity,
		GuardWindow:  o.guardWindow,
		Logger:       o.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	return &Workspace{
		Notes:        noteStore,
		Tasks:        taskStore,
		Boards:       boardStore,
		orchestrator: orch,
		connectivity: o.connectivity,
		logger:       o.logger,
	}, nil
}

// Open assembles a filesystem-backed workspace rooted at path, reading
// silt.yaml for the owner uid and remote directory. Local snapshots land in
// the configured data dir; connectivity follows the remote directory's
// presence on disk.
func Open(path string, opts ...Option) (*Workspace, error) {
	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if cfg.Owner == "" {
		return nil, fmt.Errorf("%s: owner is required", platform.ConfigFile)
	}
	if cfg.Remote == "" {
		return nil, fmt.Errorf("%s: remote is required", platform.ConfigFile)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}

	local, err := fs.NewLocalStore(platform.Resolve(path, cfg.DataDir))
	if err != nil {
		return nil, err
	}
	remotePath := platform.Resolve(path, cfg.Remote)
	remote, err := fs.NewRemote(remotePath)
	if err != nil {
		return nil, err
	}

	identity := memory.NewIdentity()
	identity.SignIn(cfg.Owner)

	base := []Option{
		WithLocalStore(local),
		WithRemote(remote),
		WithConnectivity(fs.NewMonitor(remotePath, 0)),
		WithIdentity(identity),
	}
	return New(append(base, opts...)...)
}
