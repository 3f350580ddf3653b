package store

// MergePolicy resolves the content fields of two copies of the same entity
// during sync. Policies only decide field values and per-field stamps; the
// engine owns state reconciliation (deleted is sticky) and the merged
// updatedAt stamp.
type MergePolicy[E any] interface {
	// Name identifies the policy for logs and introspection.
	Name() string

	// Merge resolves local and remote into one record. Ties keep local.
	Merge(local, remote E) E
}

// RecordLevel merges whole records: the side with the strictly greater
// updatedAt supplies every field. Used by entities edited through atomic
// forms (tasks, task boards).
type RecordLevel[E any] struct {
	// UpdatedAt extracts the record-level stamp.
	UpdatedAt func(*E) int64
}

func (RecordLevel[E]) Name() string { return "record-level" }

func (p RecordLevel[E]) Merge(local, remote E) E {
	if p.UpdatedAt(&remote) > p.UpdatedAt(&local) {
		return remote
	}
	return local
}

// FieldRule describes one independently merged field of a field-granular
// entity: where its stamp lives and how to transfer its value.
type FieldRule[E any] struct {
	Name string

	// Stamp returns a pointer to the field's <field>UpdatedAt.
	Stamp func(*E) *int64

	// Copy transfers the field value from src to dst.
	Copy func(dst, src *E)
}

// FieldLevel merges field by field: for each rule, the side with the
// strictly greater per-field stamp supplies that field's value and stamp.
// Used by entities edited piecemeal (notes).
type FieldLevel[E any] struct {
	Fields []FieldRule[E]
}

func (FieldLevel[E]) Name() string { return "field-level" }

func (p FieldLevel[E]) Merge(local, remote E) E {
	merged := local
	for _, f := range p.Fields {
		if *f.Stamp(&remote) > *f.Stamp(&merged) {
			f.Copy(&merged, &remote)
			*f.Stamp(&merged) = *f.Stamp(&remote)
		}
	}
	return merged
}
