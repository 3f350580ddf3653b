package store_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/silt/pkg/adapters/memory"
	"github.com/aretw0/silt/pkg/core"
	"github.com/aretw0/silt/pkg/store"
)

type item struct {
	core.Syncable

	Body string `json:"body"`
}

type itemPatch struct {
	ID   string
	Body *string
}

func itemSchema() store.Schema[item, itemPatch] {
	return store.Schema[item, itemPatch]{
		Kind:    "items",
		PatchID: func(p itemPatch) string { return p.ID },
		New:     func(id string) item { return item{Syncable: core.Syncable{ID: id}} },
		Apply: func(e item, p itemPatch, now int64) (item, error) {
			if p.Body != nil {
				e.Body = *p.Body
			}
			return e, nil
		},
		Envelope: func(e *item) *core.Syncable { return &e.Syncable },
		Policy: store.RecordLevel[item]{
			UpdatedAt: func(e *item) int64 { return e.UpdatedAt },
		},
	}
}

type fixture struct {
	local      *memory.LocalStore
	collection *memory.Collection
	net        *memory.Connectivity
	identity   *memory.Identity
	store      *store.Store[item, itemPatch]
}

func setup(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		local:    memory.NewLocalStore(),
		net:      memory.NewConnectivity(),
		identity: memory.NewIdentity(),
	}
	f.collection = memory.NewRemote().Collection("items").(*memory.Collection)
	f.identity.SignIn("alice")

	s, err := store.New(itemSchema(), store.Deps{
		Local:        f.local,
		Remote:       f.collection,
		Connectivity: f.net,
		Identity:     f.identity,
		Logger:       slog.Default(),
	})
	require.NoError(t, err)
	f.store = s
	return f
}

func body(s string) *string { return &s }

func TestSaveOfflinePersistsAndQueuesPending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	saved, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)
	assert.Equal(t, "hello", saved.Body)
	assert.Equal(t, core.StateActive, saved.State)
	assert.NotZero(t, saved.CreatedAt)
	assert.NotZero(t, saved.UpdatedAt)

	got, ok := f.store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "hello", got.Body)

	// Offline: nothing reached the remote, the ledger holds the change.
	docs, err := f.collection.QueryByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Contains(t, f.store.Pending(), "a")
}

func TestSaveSamePatchIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	patch := itemPatch{ID: "a", Body: body("same")}
	first, err := f.store.Save(ctx, patch)
	require.NoError(t, err)
	second, err := f.store.Save(ctx, patch)
	require.NoError(t, err)

	// Content and identity are unchanged; only updatedAt may advance.
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.GreaterOrEqual(t, second.UpdatedAt, first.UpdatedAt)
	assert.Len(t, f.store.Active(), 1)
}

func TestSaveRequiresID(t *testing.T) {
	f := setup(t)

	_, err := f.store.Save(context.Background(), itemPatch{Body: body("x")})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestRestartRestoresSnapshot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)

	// Same local store, fresh engine: simulates a process restart.
	reopened, err := store.New(itemSchema(), store.Deps{
		Local:        f.local,
		Remote:       f.collection,
		Connectivity: f.net,
		Identity:     f.identity,
	})
	require.NoError(t, err)

	got, ok := reopened.Get("a")
	require.True(t, ok)
	assert.Equal(t, "hello", got.Body)
	assert.Contains(t, reopened.Pending(), "a")
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.local.Set(ctx, "items", []byte("{not json")))

	s, err := store.New(itemSchema(), store.Deps{
		Local:        f.local,
		Remote:       f.collection,
		Connectivity: f.net,
		Identity:     f.identity,
	})
	require.NoError(t, err)
	assert.Empty(t, s.Active())
}

func TestDeleteLeavesTombstone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, "a"))

	got, ok := f.store.Get("a")
	require.True(t, ok)
	assert.True(t, got.IsDeleted())
	// Content survives the tombstone.
	assert.Equal(t, "hello", got.Body)

	assert.Empty(t, f.store.Active())
	assert.Contains(t, f.store.Pending(), "a")
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.store.Delete(context.Background(), "ghost"))
	assert.Empty(t, f.store.Pending())
}

func TestSaveResurrectsDeleted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, "a"))

	saved, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("back")})
	require.NoError(t, err)
	assert.Equal(t, core.StateActive, saved.State)
	assert.Len(t, f.store.Active(), 1)
}

func TestSyncPushesPendingAndClearsLedger(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)

	f.net.SetOnline(true)
	require.NoError(t, f.store.Sync(ctx))

	docs, err := f.collection.QueryByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Contains(t, docs, "a")

	var doc store.Document[item]
	require.NoError(t, json.Unmarshal(docs["a"], &doc))
	assert.Equal(t, "alice", doc.OwnerID)
	assert.Equal(t, "hello", doc.Entity.Body)

	assert.Empty(t, f.store.Pending())
	assert.NotZero(t, f.store.LastSync())
}

func TestSyncNoopOfflineOrSignedOut(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)

	// Offline.
	require.NoError(t, f.store.Sync(ctx))
	assert.Zero(t, f.store.LastSync())

	// Online but signed out.
	f.net.SetOnline(true)
	f.identity.SignOut()
	require.NoError(t, f.store.Sync(ctx))
	assert.Zero(t, f.store.LastSync())
	assert.Contains(t, f.store.Pending(), "a")
}

func TestSyncAdoptsRemoteOnlyRecords(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	remote := item{Syncable: core.Syncable{ID: "r", State: core.StateActive, CreatedAt: 1, UpdatedAt: 1}, Body: "from remote"}
	data, err := json.Marshal(store.Document[item]{OwnerID: "alice", Entity: remote})
	require.NoError(t, err)
	require.NoError(t, f.collection.Write(ctx, "r", data))

	f.net.SetOnline(true)
	require.NoError(t, f.store.Sync(ctx))

	got, ok := f.store.Get("r")
	require.True(t, ok)
	assert.Equal(t, "from remote", got.Body)
}

func TestSyncFetchFailureLeavesStateUntouched(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)

	f.net.SetOnline(true)
	f.collection.FailQueries(true)

	err = f.store.Sync(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRemoteUnavailable)
	assert.Contains(t, f.store.Pending(), "a")
	assert.Zero(t, f.store.LastSync())

	// Recovery: the queued change goes out on the next pass.
	f.collection.FailQueries(false)
	require.NoError(t, f.store.Sync(ctx))
	assert.Empty(t, f.store.Pending())
}

func TestPushFailureKeepsPendingUntilSync(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.net.SetOnline(true)
	f.collection.FailWrites(true)

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)
	assert.Contains(t, f.store.Pending(), "a")

	f.collection.FailWrites(false)
	require.NoError(t, f.store.Sync(ctx))
	assert.Empty(t, f.store.Pending())

	docs, err := f.collection.QueryByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, docs, "a")
}

func TestSyncNeverResurrectsPendingTombstone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, "a"))

	// Remote holds a strictly newer active copy.
	local, _ := f.store.Get("a")
	remote := item{
		Syncable: core.Syncable{ID: "a", State: core.StateActive, CreatedAt: local.CreatedAt, UpdatedAt: local.UpdatedAt + 1000},
		Body:     "revived",
	}
	data, err := json.Marshal(store.Document[item]{OwnerID: "alice", Entity: remote})
	require.NoError(t, err)
	require.NoError(t, f.collection.Write(ctx, "a", data))

	f.net.SetOnline(true)
	require.NoError(t, f.store.Sync(ctx))

	got, ok := f.store.Get("a")
	require.True(t, ok)
	assert.True(t, got.IsDeleted())
	assert.Empty(t, f.store.Active())
}

func TestSyncRemoteDeletionIsSticky(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.net.SetOnline(true)
	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("hello")})
	require.NoError(t, err)
	require.NoError(t, f.store.Sync(ctx))

	// Another device deleted the record, with an older stamp than a
	// subsequent local edit.
	local, _ := f.store.Get("a")
	remote := item{
		Syncable: core.Syncable{ID: "a", State: core.StateDeleted, CreatedAt: local.CreatedAt, UpdatedAt: local.UpdatedAt - 1000},
		Body:     "hello",
	}
	data, err := json.Marshal(store.Document[item]{OwnerID: "alice", Entity: remote})
	require.NoError(t, err)
	require.NoError(t, f.collection.Write(ctx, "a", data))

	require.NoError(t, f.store.Sync(ctx))

	got, ok := f.store.Get("a")
	require.True(t, ok)
	assert.True(t, got.IsDeleted())
}

func TestSyncSkipsUndecodableDocuments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.collection.Write(ctx, "bad", []byte(`{"ownerId":"alice","entity":"not an object"}`)))

	f.net.SetOnline(true)
	require.NoError(t, f.store.Sync(ctx))
	assert.Empty(t, f.store.Active())
}

func TestFindFiltersActiveOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, itemPatch{ID: "a", Body: body("keep")})
	require.NoError(t, err)
	_, err = f.store.Save(ctx, itemPatch{ID: "b", Body: body("drop")})
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, "b"))

	got := f.store.Find(func(e item) bool { return e.Body == "keep" || e.Body == "drop" })
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}
