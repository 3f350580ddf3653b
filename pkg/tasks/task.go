// Package tasks defines the task entity and its store schema.
//
// A task belongs to a board, and its status is constrained to the parent
// board's declared status list. Tasks are edited through atomic forms, so
// they merge whole-record.
package tasks

import (
	"fmt"
	"slices"

	"github.com/aretw0/silt/pkg/boards"
	"github.com/aretw0/silt/pkg/core"
	"github.com/aretw0/silt/pkg/store"
)

// Field length limits. Oversized values are silently truncated.
const (
	MaxNameLen        = 50
	MaxDescriptionLen = 200
)

// Kind is the collection name and local snapshot key for tasks.
const Kind = "tasks"

// BoardLookup resolves a task's parent board. Implementations return
// ok=false for absent or soft-deleted boards.
type BoardLookup interface {
	Board(id string) (boards.Board, bool)
}

// Task is a single unit of work on a board.
type Task struct {
	core.Syncable

	Name        string `json:"name"`
	Description string `json:"description"`
	BoardID     string `json:"boardId"`
	Status      string `json:"status"`
	DueDate     int64  `json:"dueDate,omitempty"` // Unix millis, 0 = unset
}

// Patch is a partial task update. Nil fields are left untouched.
type Patch struct {
	ID          string
	Name        *string
	Description *string
	BoardID     *string
	Status      *string
	DueDate     *int64
}

// Schema wires the task type into the generic store engine. The lookup
// validates the parent board on every save.
func Schema(lookup BoardLookup) store.Schema[Task, Patch] {
	return store.Schema[Task, Patch]{
		Kind:    Kind,
		PatchID: func(p Patch) string { return p.ID },
		New:     func(id string) Task { return Task{Syncable: core.Syncable{ID: id}} },
		Apply: func(t Task, p Patch, now int64) (Task, error) {
			return applyPatch(t, p, lookup)
		},
		Envelope: func(t *Task) *core.Syncable { return &t.Syncable },
		Policy: store.RecordLevel[Task]{
			UpdatedAt: func(t *Task) int64 { return t.UpdatedAt },
		},
	}
}

// applyPatch merges a patch onto an existing task and resolves the status
// against the parent board's declared list.
func applyPatch(t Task, p Patch, lookup BoardLookup) (Task, error) {
	if p.Name != nil {
		t.Name = store.Clamp(*p.Name, MaxNameLen)
	}
	if p.Description != nil {
		t.Description = store.Clamp(*p.Description, MaxDescriptionLen)
	}
	if p.BoardID != nil {
		t.BoardID = *p.BoardID
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}

	board, ok := lookup.Board(t.BoardID)
	if !ok {
		return Task{}, fmt.Errorf("board %q: %w", t.BoardID, core.ErrNotFound)
	}
	t.Status = resolveStatus(p.Status, t.Status, board.StatusTypes)
	return t, nil
}

// resolveStatus picks, in order: the requested value if the board declares
// it, the prior value if still declared, else the board's first status.
// An invalid requested value is never stored. A board with no declared
// statuses (possible when adopted verbatim from a malformed remote
// document) falls back to the defaults.
func resolveStatus(requested *string, prior string, declared []string) string {
	if len(declared) == 0 {
		declared = boards.DefaultStatusTypes
	}
	if requested != nil && slices.Contains(declared, *requested) {
		return *requested
	}
	if slices.Contains(declared, prior) {
		return prior
	}
	return declared[0]
}

// ByBoard returns the active tasks belonging to one board.
func ByBoard(s *store.Store[Task, Patch], boardID string) []Task {
	return s.Find(func(t Task) bool { return t.BoardID == boardID })
}
