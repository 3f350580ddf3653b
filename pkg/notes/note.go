// Package notes defines the note entity and its store schema.
//
// Notes are free text edited piecemeal, so they merge field by field: each
// tracked field carries its own timestamp and conflicts resolve per field
// rather than per record.
package notes

import (
	"github.com/aretw0/silt/pkg/core"
	"github.com/aretw0/silt/pkg/store"
)

// Field length limits. Oversized values are silently truncated.
const (
	MaxTitleLen   = 100
	MaxContentLen = 10000
)

// Kind is the collection name and local snapshot key for notes.
const Kind = "notes"

// Note is a piece of free text with per-field merge stamps.
type Note struct {
	core.Syncable

	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`

	TitleUpdatedAt   int64 `json:"titleUpdatedAt"`
	ContentUpdatedAt int64 `json:"contentUpdatedAt"`
	TagsUpdatedAt    int64 `json:"tagsUpdatedAt"`
}

// Patch is a partial note update. Nil fields are left untouched.
// ID is always caller-supplied: the note address is the route key, so it
// exists before any content does.
type Patch struct {
	ID      string
	Title   *string
	Content *string
	Tags    *[]string
}

// Schema wires the note type into the generic store engine.
func Schema() store.Schema[Note, Patch] {
	return store.Schema[Note, Patch]{
		Kind:     Kind,
		PatchID:  func(p Patch) string { return p.ID },
		New:      func(id string) Note { return Note{Syncable: core.Syncable{ID: id}} },
		Apply:    applyPatch,
		Envelope: func(n *Note) *core.Syncable { return &n.Syncable },
		Policy:   mergePolicy(),
	}
}

// applyPatch merges a patch onto an existing note. Tracked fields stamp
// their own timestamp only when present in the patch; untouched fields keep
// their prior stamp.
func applyPatch(n Note, p Patch, now int64) (Note, error) {
	if p.Title != nil {
		n.Title = store.Clamp(*p.Title, MaxTitleLen)
		n.TitleUpdatedAt = now
	}
	if p.Content != nil {
		n.Content = store.Clamp(*p.Content, MaxContentLen)
		n.ContentUpdatedAt = now
	}
	if p.Tags != nil {
		n.Tags = append([]string(nil), (*p.Tags)...)
		n.TagsUpdatedAt = now
	}
	return n, nil
}

func mergePolicy() store.MergePolicy[Note] {
	return store.FieldLevel[Note]{
		Fields: []store.FieldRule[Note]{
			{
				Name:  "title",
				Stamp: func(n *Note) *int64 { return &n.TitleUpdatedAt },
				Copy:  func(dst, src *Note) { dst.Title = src.Title },
			},
			{
				Name:  "content",
				Stamp: func(n *Note) *int64 { return &n.ContentUpdatedAt },
				Copy:  func(dst, src *Note) { dst.Content = src.Content },
			},
			{
				Name:  "tags",
				Stamp: func(n *Note) *int64 { return &n.TagsUpdatedAt },
				Copy:  func(dst, src *Note) { dst.Tags = append([]string(nil), src.Tags...) },
			},
		},
	}
}
