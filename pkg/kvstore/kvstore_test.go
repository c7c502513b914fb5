package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tokenlens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetAbsentKey(t *testing.T) {
	s := testStore(t)
	v, err := s.Get(context.Background(), "doc-1", "missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSetGetRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "doc-1", "ignored-elements", []byte(`["1:2"]`)))
	v, err := s.Get(ctx, "doc-1", "ignored-elements")
	require.NoError(t, err)
	assert.Equal(t, `["1:2"]`, string(v))

	// Overwrite replaces.
	require.NoError(t, s.Set(ctx, "doc-1", "ignored-elements", []byte(`[]`)))
	v, err = s.Get(ctx, "doc-1", "ignored-elements")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))
}

func TestNamespaceIsolation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "doc-1", "k", []byte("a")))
	require.NoError(t, s.Set(ctx, "doc-2", "k", []byte("b")))

	v, err := s.Get(ctx, "doc-1", "k")
	require.NoError(t, err)
	assert.Equal(t, "a", string(v))

	v, err = s.Get(ctx, "doc-2", "k")
	require.NoError(t, err)
	assert.Equal(t, "b", string(v))
}

func TestDeleteAndKeys(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "doc-1", "b", []byte("2")))
	require.NoError(t, s.Set(ctx, "doc-1", "a", []byte("1")))

	keys, err := s.Keys(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Delete(ctx, "doc-1", "a"))
	require.NoError(t, s.Delete(ctx, "doc-1", "never-existed"))

	keys, err = s.Keys(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestOpenRejectsBadPaths(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)

	_, err = Open(t.TempDir())
	assert.Error(t, err)
}
