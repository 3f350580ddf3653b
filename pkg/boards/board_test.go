package boards

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestApplyDefaultsStatusTypes(t *testing.T) {
	schema := Schema()
	b := schema.New("b1")

	b, err := schema.Apply(b, Patch{ID: "b1", Name: str("Inbox")}, 100)
	require.NoError(t, err)
	assert.Equal(t, "Inbox", b.Name)
	assert.Equal(t, DefaultStatusTypes, b.StatusTypes)
}

func TestApplyKeepsDeclaredStatusTypes(t *testing.T) {
	schema := Schema()
	b := schema.New("b1")

	statuses := []string{"open", "closed"}
	b, err := schema.Apply(b, Patch{ID: "b1", StatusTypes: &statuses}, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "closed"}, b.StatusTypes)

	// An empty list never overwrites a declared one.
	empty := []string{}
	b, err = schema.Apply(b, Patch{ID: "b1", StatusTypes: &empty}, 200)
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "closed"}, b.StatusTypes)
}

func TestApplyTruncatesName(t *testing.T) {
	schema := Schema()
	b := schema.New("b1")

	long := strings.Repeat("x", MaxNameLen+5)
	b, err := schema.Apply(b, Patch{ID: "b1", Name: &long}, 100)
	require.NoError(t, err)
	assert.Len(t, []rune(b.Name), MaxNameLen)
}

func TestMergeIsRecordLevel(t *testing.T) {
	policy := Schema().Policy

	local := Board{Name: "local"}
	local.UpdatedAt = 100
	remote := Board{Name: "remote", StatusTypes: []string{"a", "b"}}
	remote.UpdatedAt = 200

	got := policy.Merge(local, remote)
	assert.Equal(t, "remote", got.Name)
	assert.Equal(t, []string{"a", "b"}, got.StatusTypes)

	remote.UpdatedAt = 100
	got = policy.Merge(local, remote)
	assert.Equal(t, "local", got.Name)
}
