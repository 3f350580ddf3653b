package store

import "github.com/aretw0/silt/pkg/core"

// Schema describes one entity kind to the generic store engine. The three
// instantiations (notes, tasks, task boards) differ only in this glue: the
// entity struct, the patch struct, the pure patch application, and the
// merge policy.
type Schema[E any, P any] struct {
	// Kind is both the remote collection name and the local snapshot key.
	Kind string

	// PatchID extracts the target entity id from a patch.
	PatchID func(P) string

	// New returns a zero entity carrying only its id.
	New func(id string) E

	// Apply merges a patch onto an existing record: fields present in the
	// patch overwrite (clamped to their maximum lengths), absent fields
	// are retained. Field-granular entities stamp their per-field
	// timestamps here. Apply is pure; the engine owns the envelope side
	// effects (state, createdAt, updatedAt, pending ledger).
	Apply func(existing E, p P, now int64) (E, error)

	// Envelope gives the engine access to the embedded Syncable.
	Envelope func(*E) *core.Syncable

	// Policy resolves local-vs-remote conflicts during sync.
	Policy MergePolicy[E]
}

// Clamp truncates s to at most max runes. Truncation is silent: oversized
// values are shortened, never rejected.
func Clamp(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
