// Syncable is the central envelope of the domain.
package core

import "time"

// State is the lifecycle flag of an entity. Entities are never physically
// removed from a store; deletion only flips the state.
type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// Syncable carries the common fields of every entity that participates in
// synchronization. It gets embedded in each domain type.
type Syncable struct {
	ID        string `json:"id"`
	State     State  `json:"state"`
	CreatedAt int64  `json:"createdAt"` // Unix millis, first-write wins
	UpdatedAt int64  `json:"updatedAt"` // Unix millis, stamped on every mutation
}

// IsDeleted reports whether the entity is soft-deleted.
func (s *Syncable) IsDeleted() bool {
	return s.State == StateDeleted
}

// User is the authenticated identity that entities are scoped to.
type User struct {
	UID string
}

// RemoteChange signals that a document changed in a remote collection.
type RemoteChange struct {
	Collection string
	ID         string
	OwnerID    string
	Timestamp  int64 // Unix millis
}

// NowMillis returns the current wall clock in Unix milliseconds, the
// timestamp unit used across stores and merge policies.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
