package store

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/silt/pkg/core"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Kind        string `json:"kind"`
	MergePolicy string `json:"merge_policy"`
	Entities    int    `json:"entities"`
	Active      int    `json:"active"`
	Pending     int    `json:"pending_changes"`
	LastSync    int64  `json:"last_sync,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store[E, P]) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := 0
	for _, e := range s.snap.Entities {
		if s.schema.Envelope(&e).State == core.StateActive {
			active++
		}
	}

	return StoreState{
		Kind:        s.schema.Kind,
		MergePolicy: s.schema.Policy.Name(),
		Entities:    len(s.snap.Entities),
		Active:      active,
		Pending:     len(s.snap.Pending),
		LastSync:    s.snap.LastSync,
	}
}

// ComponentType implements introspection.Component.
func (s *Store[E, P]) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store[struct{}, struct{}])(nil)
var _ introspection.Component = (*Store[struct{}, struct{}])(nil)
