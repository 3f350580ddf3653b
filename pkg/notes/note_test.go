package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestApplyStampsOnlyPatchedFields(t *testing.T) {
	schema := Schema()
	n := schema.New("n1")

	n, err := schema.Apply(n, Patch{ID: "n1", Title: str("first")}, 100)
	require.NoError(t, err)
	assert.Equal(t, "first", n.Title)
	assert.Equal(t, int64(100), n.TitleUpdatedAt)
	assert.Zero(t, n.ContentUpdatedAt)

	n, err = schema.Apply(n, Patch{ID: "n1", Content: str("body")}, 200)
	require.NoError(t, err)
	assert.Equal(t, "body", n.Content)
	assert.Equal(t, int64(200), n.ContentUpdatedAt)
	// Untouched field keeps its stamp and value.
	assert.Equal(t, "first", n.Title)
	assert.Equal(t, int64(100), n.TitleUpdatedAt)
}

func TestApplyTruncatesOversizedFields(t *testing.T) {
	schema := Schema()
	n := schema.New("n1")

	long := strings.Repeat("x", MaxTitleLen+20)
	n, err := schema.Apply(n, Patch{ID: "n1", Title: &long}, 100)
	require.NoError(t, err)
	assert.Len(t, []rune(n.Title), MaxTitleLen)

	huge := strings.Repeat("y", MaxContentLen+1)
	n, err = schema.Apply(n, Patch{ID: "n1", Content: &huge}, 200)
	require.NoError(t, err)
	assert.Len(t, []rune(n.Content), MaxContentLen)
}

func TestApplyCopiesTags(t *testing.T) {
	schema := Schema()
	n := schema.New("n1")

	tags := []string{"work", "urgent"}
	n, err := schema.Apply(n, Patch{ID: "n1", Tags: &tags}, 100)
	require.NoError(t, err)

	tags[0] = "mutated"
	assert.Equal(t, []string{"work", "urgent"}, n.Tags)
	assert.Equal(t, int64(100), n.TagsUpdatedAt)
}

func TestMergeResolvesPerField(t *testing.T) {
	policy := Schema().Policy

	local := Note{Title: "local title", Content: "local body", TitleUpdatedAt: 300, ContentUpdatedAt: 100}
	remote := Note{Title: "remote title", Content: "remote body", TitleUpdatedAt: 200, ContentUpdatedAt: 400}

	got := policy.Merge(local, remote)

	// Newer side wins per field, not per record.
	assert.Equal(t, "local title", got.Title)
	assert.Equal(t, "remote body", got.Content)
	assert.Equal(t, int64(300), got.TitleUpdatedAt)
	assert.Equal(t, int64(400), got.ContentUpdatedAt)
}

func TestMergeTieKeepsLocal(t *testing.T) {
	policy := Schema().Policy

	local := Note{Title: "local", TitleUpdatedAt: 100}
	remote := Note{Title: "remote", TitleUpdatedAt: 100}

	got := policy.Merge(local, remote)
	assert.Equal(t, "local", got.Title)
}
