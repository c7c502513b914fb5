package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsyslab/tokenlens/pkg/colorhex"
	"github.com/dsyslab/tokenlens/pkg/ignore"
)

// End-to-end: one rectangle with a fill bound to a two-mode color
// variable, one rectangle with an unbound red stroke.
const scenarioJSON = `{
  "id": "doc-e2e",
  "name": "Scenario",
  "pages": [
    {
      "id": "0:1", "name": "Page 1", "type": "PAGE",
      "children": [
        {"id": "1:1", "name": "Bound rect", "type": "RECTANGLE",
         "fills": [{"type": "SOLID", "color": {"r": 0.06666666666666667, "g": 0.13333333333333333, "b": 0.2},
                    "boundVariable": {"type": "VARIABLE_ALIAS", "id": "VariableID:T1"}}]},
        {"id": "1:2", "name": "Raw stroke rect", "type": "RECTANGLE",
         "strokes": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}]}
      ]
    }
  ],
  "variables": {
    "T1": {"id": "T1", "name": "Color/Primary", "resolvedType": "COLOR", "collectionId": "c1",
           "valuesByMode": {
             "m1": {"r": 0.06666666666666667, "g": 0.13333333333333333, "b": 0.2},
             "m2": {"r": 0.9333333333333333, "g": 0.8666666666666667, "b": 0.8}}}
  },
  "collections": {
    "c1": {"id": "c1", "name": "Core", "remote": false, "key": "",
           "modes": [{"modeId": "m1", "name": "Light"}, {"modeId": "m2", "name": "Dark"}]}
  }
}`

func TestEndToEndScenario(t *testing.T) {
	doc := decodeDoc(t, scenarioJSON)
	session := fixtureSession(t, doc, Options{})

	res, err := session.GetVariableCollections(context.Background(), ScopePage)
	require.NoError(t, err)

	require.Len(t, res.Collections, 1)
	col := res.Collections[0]
	assert.Equal(t, "Core", col.Name)
	require.Len(t, col.Variables, 1)

	v := col.Variables[0]
	assert.Equal(t, "T1", v.ID)
	require.Len(t, v.ValuesByMode, 2)
	light := v.ValuesByMode["m1"].(colorhex.Color)
	dark := v.ValuesByMode["m2"].(colorhex.Color)
	assert.Equal(t, "#112233", colorhex.Hex(light))
	assert.Equal(t, "#EEDDCC", colorhex.Hex(dark))
	assert.Equal(t, []string{"1:1"}, v.NodeIDs)

	require.Len(t, res.Unbound, 1)
	assert.Equal(t, UnboundStroke, res.Unbound[0].Type)
	assert.Contains(t, res.Unbound[0].Details, "#FF0000")

	assert.Equal(t, "Page 1", res.ScopeName)
}

func TestNoEmptyCollectionsInResult(t *testing.T) {
	doc := fixtureDocument(t)
	session := fixtureSession(t, doc, Options{})

	res, err := session.GetVariableCollections(context.Background(), ScopeDocument)
	require.NoError(t, err)
	require.NotEmpty(t, res.Collections)
	for _, col := range res.Collections {
		assert.NotEmpty(t, col.Variables, "collection %s must not be empty", col.Name)
	}

	// The dangling 9:77 reference was dropped during resolution.
	assert.Equal(t, 1, res.Stats.VariablesDropped)
	assert.Equal(t, "2 pages", res.ScopeName)
}

func TestIgnoreRoundTrip(t *testing.T) {
	doc := fixtureDocument(t)
	session := fixtureSession(t, doc, Options{})
	ctx := context.Background()

	res, err := session.GetVariableCollections(ctx, ScopePage)
	require.NoError(t, err)
	require.Contains(t, elementIDs(res.Unbound), "1:3")

	require.NoError(t, session.Ignores().AddElement(ctx, "1:3"))
	res, err = session.GetVariableCollections(ctx, ScopePage)
	require.NoError(t, err)
	assert.NotContains(t, elementIDs(res.Unbound), "1:3")
	assert.Equal(t, 1, res.Stats.UnboundIgnored)

	require.NoError(t, session.Ignores().RemoveElement(ctx, "1:3"))
	res, err = session.GetVariableCollections(ctx, ScopePage)
	require.NoError(t, err)
	assert.Contains(t, elementIDs(res.Unbound), "1:3")
}

func TestByValueIgnoreThroughPipeline(t *testing.T) {
	doc := fixtureDocument(t)
	session := fixtureSession(t, doc, Options{})
	ctx := context.Background()

	require.NoError(t, session.Ignores().AddValue(ctx,
		ignore.ValueIgnore{ValueType: ignore.ValueTextNoStyle}))

	res, err := session.GetVariableCollections(ctx, ScopePage)
	require.NoError(t, err)

	// Both text flags suppressed; the stroke flag survives.
	assert.Equal(t, []string{"1:3"}, elementIDs(res.Unbound))
}

func TestInvalidScope(t *testing.T) {
	doc := fixtureDocument(t)
	session := fixtureSession(t, doc, Options{})

	_, err := session.GetVariableCollections(context.Background(), Scope("everything"))
	assert.Error(t, err)
	_, err = session.GetComponentUsage(context.Background(), Scope(""))
	assert.Error(t, err)
}

func TestComponentUsagePipeline(t *testing.T) {
	doc := fixtureDocument(t)
	session := fixtureSession(t, doc, Options{})

	res, err := session.GetComponentUsage(context.Background(), ScopeDocument)
	require.NoError(t, err)
	require.Len(t, res.Libraries, 2)

	local := res.Libraries[0]
	assert.Equal(t, LocalLibraryKey, local.Key)
	assert.Equal(t, "Local components", local.Name)
	assert.False(t, local.Remote)
	assert.False(t, local.IsGhost)
	require.Len(t, local.Components, 1)
	assert.Equal(t, "Button", local.Components[0].Name)
	assert.Equal(t, []string{"1:7"}, local.Components[0].NodeIDs)

	remote := res.Libraries[1]
	assert.Equal(t, "acme/ui-kit", remote.Key)
	assert.Equal(t, "ui-kit", remote.Name)
	assert.True(t, remote.Remote)
	assert.False(t, remote.IsGhost)
	require.Len(t, remote.Components, 1)
	assert.Equal(t, "Chip", remote.Components[0].Name)
}

func TestComponentUsagePageScope(t *testing.T) {
	doc := fixtureDocument(t)
	session := fixtureSession(t, doc, Options{})

	res, err := session.GetComponentUsage(context.Background(), ScopePage)
	require.NoError(t, err)
	require.Len(t, res.Libraries, 1)
	assert.Equal(t, LocalLibraryKey, res.Libraries[0].Key)
	assert.Equal(t, "Page 1", res.ScopeName)
}
