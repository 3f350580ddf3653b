package silt

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/silt/pkg/boards"
	"github.com/aretw0/silt/pkg/core"
	"github.com/aretw0/silt/pkg/notes"
	"github.com/aretw0/silt/pkg/store"
	"github.com/aretw0/silt/pkg/syncer"
	"github.com/aretw0/silt/pkg/tasks"
)

// Workspace bundles the three entity stores with their sync orchestrator.
type Workspace struct {
	Notes  *store.Store[notes.Note, notes.Patch]
	Tasks  *store.Store[tasks.Task, tasks.Patch]
	Boards *store.Store[boards.Board, boards.Patch]

	orchestrator *syncer.Orchestrator
	connectivity core.Connectivity
	logger       *slog.Logger
}

// boardLookup adapts the board store to the task schema's parent check.
// Soft-deleted boards read as absent.
type boardLookup struct {
	s *store.Store[boards.Board, boards.Patch]
}

func (l boardLookup) Board(id string) (boards.Board, bool) {
	b, ok := l.s.Get(id)
	if !ok || b.IsDeleted() {
		return boards.Board{}, false
	}
	return b, true
}

// Start launches the sync orchestrator and, when the connectivity adapter
// supports it, its polling loop. Stores are usable before Start; only
// automatic syncing waits for it.
func (w *Workspace) Start(ctx context.Context) error {
	if starter, ok := w.connectivity.(interface {
		Start(context.Context) error
	}); ok {
		if err := starter.Start(ctx); err != nil {
			return err
		}
	}
	return w.orchestrator.Start(ctx)
}

// Stop shuts down the orchestrator and any started connectivity polling.
func (w *Workspace) Stop(ctx context.Context) error {
	err := w.orchestrator.Stop(ctx)
	if stopper, ok := w.connectivity.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	return err
}

// SyncAll runs one sync pass over every store, collecting errors.
func (w *Workspace) SyncAll(ctx context.Context) error {
	return errors.Join(
		w.Boards.Sync(ctx),
		w.Tasks.Sync(ctx),
		w.Notes.Sync(ctx),
	)
}

// DeleteBoard soft-deletes a board and every task on it. Deleting an
// unknown board is a no-op. Tasks go first so a crash midway leaves
// orphaned tasks rather than a live board with dead children.
func (w *Workspace) DeleteBoard(ctx context.Context, id string) error {
	if _, ok := w.Boards.Get(id); !ok {
		return nil
	}
	for _, t := range tasks.ByBoard(w.Tasks, id) {
		if err := w.Tasks.Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	return w.Boards.Delete(ctx, id)
}

// Orchestrator exposes the sync worker, mainly for introspection.
func (w *Workspace) Orchestrator() *syncer.Orchestrator {
	return w.orchestrator
}
