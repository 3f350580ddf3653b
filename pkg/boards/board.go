// Package boards defines the task board entity and its store schema.
package boards

import (
	"github.com/aretw0/silt/pkg/core"
	"github.com/aretw0/silt/pkg/store"
)

// MaxNameLen is the board name limit. Oversized names are truncated.
const MaxNameLen = 50

// Kind is the collection name and local snapshot key for task boards.
const Kind = "taskBoards"

// DefaultStatusTypes is the status list a board declares when the caller
// supplies none. A board always declares at least one status: child tasks
// fall back to the first entry.
var DefaultStatusTypes = []string{"todo", "doing", "done"}

// Board groups tasks and declares the status values its tasks may take.
// Boards are edited through atomic forms, so they merge whole-record.
type Board struct {
	core.Syncable

	Name        string   `json:"name"`
	StatusTypes []string `json:"statusTypes"`
}

// Patch is a partial board update. Nil fields are left untouched.
type Patch struct {
	ID          string
	Name        *string
	StatusTypes *[]string
}

// Schema wires the board type into the generic store engine.
func Schema() store.Schema[Board, Patch] {
	return store.Schema[Board, Patch]{
		Kind:     Kind,
		PatchID:  func(p Patch) string { return p.ID },
		New:      func(id string) Board { return Board{Syncable: core.Syncable{ID: id}} },
		Apply:    applyPatch,
		Envelope: func(b *Board) *core.Syncable { return &b.Syncable },
		Policy: store.RecordLevel[Board]{
			UpdatedAt: func(b *Board) int64 { return b.UpdatedAt },
		},
	}
}

func applyPatch(b Board, p Patch, now int64) (Board, error) {
	if p.Name != nil {
		b.Name = store.Clamp(*p.Name, MaxNameLen)
	}
	if p.StatusTypes != nil && len(*p.StatusTypes) > 0 {
		b.StatusTypes = append([]string(nil), (*p.StatusTypes)...)
	}
	if len(b.StatusTypes) == 0 {
		b.StatusTypes = append([]string(nil), DefaultStatusTypes...)
	}
	return b, nil
}
