package ignore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsyslab/tokenlens/pkg/document"
	"github.com/dsyslab/tokenlens/pkg/kvstore"
)

const docJSON = `{
  "id": "doc-ig",
  "name": "Ignore fixture",
  "pages": [
    {
      "id": "0:1", "name": "Page 1", "type": "PAGE",
      "children": [
        {"id": "1:1", "name": "Label", "type": "TEXT",
         "characters": "The quick brown fox jumps over the lazy dog",
         "textStyleId": ""},
        {"id": "1:2", "name": "Box", "type": "RECTANGLE",
         "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}]}
      ]
    }
  ]
}`

func testStore(t *testing.T) (*Store, document.Oracle) {
	t.Helper()
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	doc, err := document.Decode([]byte(docJSON), nil)
	require.NoError(t, err)

	return NewStore(kv, doc.DocumentID(), nil), doc
}

func TestElementAddIsIdempotent(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddElement(ctx, "1:2"))
	require.NoError(t, s.AddElement(ctx, "1:2"))

	ids, err := s.Elements(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1:2"}, ids)
}

func TestElementRemove(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddElement(ctx, "1:1"))
	require.NoError(t, s.AddElement(ctx, "1:2"))
	require.NoError(t, s.RemoveElement(ctx, "1:1"))
	require.NoError(t, s.RemoveElement(ctx, "not-there"))

	ids, err := s.Elements(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1:2"}, ids)
}

func TestValueAddNormalizesAndDedupes(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddValue(ctx, ValueIgnore{ValueType: ValueFill, Value: "#ff0000"}))
	require.NoError(t, s.AddValue(ctx, ValueIgnore{ValueType: ValueFill, Value: "#FF0000"}))
	require.NoError(t, s.AddValue(ctx, ValueIgnore{ValueType: ValueTextNoStyle}))

	vals, err := s.Values(ctx)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, "#FF0000", vals[0].Value)
}

func TestValueRemove(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddValue(ctx, ValueIgnore{ValueType: ValueStroke, Value: "#112233"}))
	require.NoError(t, s.RemoveValue(ctx, ValueIgnore{ValueType: ValueStroke, Value: "#112233"}))

	vals, err := s.Values(ctx)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestSummarize(t *testing.T) {
	s, oracle := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddElement(ctx, "1:1"))
	require.NoError(t, s.AddElement(ctx, "1:2"))
	require.NoError(t, s.AddElement(ctx, "gone:1"))
	require.NoError(t, s.AddValue(ctx, ValueIgnore{ValueType: ValueFill, Value: "#FF0000"}))

	summary, err := s.Summarize(ctx, oracle)
	require.NoError(t, err)
	require.Len(t, summary.Elements, 3)
	require.Len(t, summary.Values, 1)

	text := summary.Elements[0]
	assert.Equal(t, "Label", text.Name)
	assert.Equal(t, "TEXT", text.NodeType)
	assert.Equal(t, "Page 1", text.Page)
	assert.Equal(t, "The quick brown fox jump…", text.Details)

	box := summary.Elements[1]
	assert.Equal(t, "Box", box.Name)
	assert.Equal(t, "#FF0000", box.Details)

	deleted := summary.Elements[2]
	assert.Equal(t, DeletedName, deleted.Name)
	assert.Empty(t, deleted.Details)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "exactlyten", Excerpt("exactlyten", 10))
	assert.Equal(t, "truncated …", Excerpt("truncated text here", 10))
}
