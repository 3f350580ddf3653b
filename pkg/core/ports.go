package core

import "context"

// Unsubscribe tears down a subscription. Safe to call more than once.
type Unsubscribe func()

// LocalStore defines the contract for durable on-device persistence.
// It is used only as a serialization target for whole-store snapshots:
// one key per store, whole-blob replace on every write.
// Adhering to this interface keeps the stores independent of the underlying
// storage mechanism (filesystem, sqlite, browser storage, ...).
type LocalStore interface {
	// Get returns the blob stored under key, or ok=false if absent.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set replaces the blob stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes the key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Collection is one logical remote document collection (notes, tasks,
// taskBoards). Documents are owner-scoped: queries and subscriptions only
// ever observe documents belonging to one identity.
type Collection interface {
	// Write upserts a document. The payload always carries the owner tag.
	Write(ctx context.Context, id string, doc []byte) error

	// QueryByOwner returns all documents belonging to ownerID, keyed by id.
	QueryByOwner(ctx context.Context, ownerID string) (map[string][]byte, error)

	// Subscribe registers fn for changes to documents owned by ownerID.
	// The callback may fire for this device's own writes; consumers guard
	// against feedback loops themselves.
	Subscribe(ctx context.Context, ownerID string, fn func(RemoteChange)) (Unsubscribe, error)
}

// Remote is the registry of collections offered by a remote document store.
type Remote interface {
	Collection(name string) Collection
}

// Connectivity reports network reachability and emits change events.
type Connectivity interface {
	// Online reports current reachability.
	Online(ctx context.Context) bool

	// OnChange registers fn to be called on every reachability transition.
	OnChange(fn func(online bool)) Unsubscribe
}

// Identity reports the current authenticated user (or none) and emits
// change notifications on login/logout. Stores read it synchronously at
// call time.
type Identity interface {
	// Current returns the signed-in user, or ok=false when signed out.
	Current() (User, bool)

	// OnChange registers fn for login/logout transitions. On logout fn is
	// called with ok=false.
	OnChange(fn func(u User, ok bool)) Unsubscribe
}
