package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/silt/pkg/core"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	// Returned slices are copies.
	got[0] = 'x'
	got2, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got2)

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollectionQueryScopedByOwner(t *testing.T) {
	ctx := context.Background()
	col := NewRemote().Collection("items")

	require.NoError(t, col.Write(ctx, "a", []byte(`{"ownerId":"alice","entity":{}}`)))
	require.NoError(t, col.Write(ctx, "b", []byte(`{"ownerId":"bob","entity":{}}`)))

	docs, err := col.QueryByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, docs, "a")
	assert.NotContains(t, docs, "b")
}

func TestCollectionSubscribeFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	col := NewRemote().Collection("items")

	var got []core.RemoteChange
	unsub, err := col.Subscribe(ctx, "alice", func(ch core.RemoteChange) {
		got = append(got, ch)
	})
	require.NoError(t, err)

	require.NoError(t, col.Write(ctx, "a", []byte(`{"ownerId":"alice","entity":{}}`)))
	require.NoError(t, col.Write(ctx, "b", []byte(`{"ownerId":"bob","entity":{}}`)))

	require.Len(t, got, 1)
	assert.Equal(t, "items", got[0].Collection)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "alice", got[0].OwnerID)

	unsub()
	require.NoError(t, col.Write(ctx, "c", []byte(`{"ownerId":"alice","entity":{}}`)))
	assert.Len(t, got, 1)
}

func TestCollectionFailureInjection(t *testing.T) {
	ctx := context.Background()
	col := NewRemote().Collection("items").(*Collection)

	col.FailWrites(true)
	err := col.Write(ctx, "a", []byte(`{"ownerId":"alice"}`))
	assert.ErrorIs(t, err, core.ErrRemoteUnavailable)

	col.FailQueries(true)
	_, err = col.QueryByOwner(ctx, "alice")
	assert.ErrorIs(t, err, core.ErrRemoteUnavailable)
}

func TestConnectivityNotifiesOnTransition(t *testing.T) {
	c := NewConnectivity()
	assert.False(t, c.Online(context.Background()))

	var events []bool
	unsub := c.OnChange(func(online bool) { events = append(events, online) })

	c.SetOnline(true)
	c.SetOnline(true) // no transition, no event
	c.SetOnline(false)
	assert.Equal(t, []bool{true, false}, events)

	unsub()
	c.SetOnline(true)
	assert.Equal(t, []bool{true, false}, events)
}

func TestIdentitySignInOut(t *testing.T) {
	id := NewIdentity()
	_, ok := id.Current()
	assert.False(t, ok)

	var events int
	id.OnChange(func(core.User, bool) { events++ })

	id.SignIn("alice")
	u, ok := id.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", u.UID)

	id.SignOut()
	_, ok = id.Current()
	assert.False(t, ok)
	assert.Equal(t, 2, events)
}
