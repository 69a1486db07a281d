package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cozy/quill-go/delta"
	. "github.com/cozy/quill-go/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s := open(t)

	_, _, err := s.LoadLatest(ctx, "doc")
	assert.Equal(t, ErrNotFound, err)

	v1 := delta.New().Insert("a\n", nil)
	v2 := delta.New().Insert("ab", delta.AttributeMap{"bold": true}).Insert("\n", delta.AttributeMap{"header": 1})
	require.NoError(t, s.SaveDocumentSnapshot(ctx, "doc", 1, v1))
	require.NoError(t, s.SaveDocumentSnapshot(ctx, "doc", 2, v2))
	require.NoError(t, s.SaveDocumentSnapshot(ctx, "other", 7, v1))

	d, rev, err := s.LoadLatest(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rev)
	assert.True(t, v2.Eq(d), d.String())

	// a saved revision is not replaced
	require.NoError(t, s.SaveDocumentSnapshot(ctx, "doc", 2, v1))
	d, _, err = s.LoadLatest(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, v2.Eq(d), d.String())

	revs, err := s.Revisions(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, revs)

	err = s.SaveDocumentSnapshot(ctx, "doc", 3, delta.New().Retain(1, nil))
	assert.Equal(t, delta.ErrNotDocument, err)
}

func TestSnapshotsEmbeds(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	doc := delta.New().Insert(delta.Embed{"image": "a.png"}, delta.AttributeMap{"alt": "logo"}).Insert("\n", nil)
	require.NoError(t, s.SaveDocumentSnapshot(ctx, "doc", 1, doc))
	d, _, err := s.LoadLatest(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, doc.Eq(d), d.String())
}
