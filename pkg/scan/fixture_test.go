package scan

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsyslab/tokenlens/pkg/document"
	"github.com/dsyslab/tokenlens/pkg/kvstore"
)

// Fixture: two pages, one local collection (Light/Dark), one reachable
// remote collection, one ghost remote collection, local and remote
// component instances, and three unbound elements on page 1.
const fixtureJSON = `{
  "id": "doc-scan",
  "name": "Scan fixture",
  "pages": [
    {
      "id": "0:1", "name": "Page 1", "type": "PAGE",
      "children": [
        {
          "id": "1:1", "name": "Card", "type": "FRAME",
          "children": [
            {"id": "1:2", "name": "Primary swatch", "type": "RECTANGLE",
             "fills": [{"type": "SOLID", "color": {"r": 0.06666666666666667, "g": 0.13333333333333333, "b": 0.2},
                        "boundVariable": {"type": "VARIABLE_ALIAS", "id": "VariableID:9:1"}}]},
            {"id": "1:3", "name": "Divider", "type": "RECTANGLE",
             "strokes": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}]},
            {"id": "1:4", "name": "Caption", "type": "TEXT",
             "characters": "Hello", "textStyleId": ""},
            {"id": "1:5", "name": "Heading", "type": "TEXT",
             "characters": "Styled but raw fill", "textStyleId": "S:1",
             "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}]},
            {"id": "1:6", "name": "Double bound", "type": "RECTANGLE",
             "boundVariables": {"fills": [{"type": "VARIABLE_ALIAS", "id": "VariableID:9:1"}]},
             "fills": [{"type": "SOLID", "color": {"r": 0.06666666666666667, "g": 0.13333333333333333, "b": 0.2},
                        "boundVariable": {"type": "VARIABLE_ALIAS", "id": "VariableID:9:1"}}]},
            {"id": "1:7", "name": "Button instance", "type": "INSTANCE",
             "componentId": "comp-local", "children": []}
          ]
        }
      ]
    },
    {
      "id": "0:2", "name": "Page 2", "type": "PAGE",
      "children": [
        {"id": "2:1", "name": "Remote swatch", "type": "RECTANGLE",
         "boundVariables": {"fills": {"type": "VARIABLE_ALIAS", "id": "VariableID:libhash/9:4"}}},
        {"id": "2:2", "name": "Chip instance", "type": "INSTANCE",
         "componentId": "comp-remote", "children": []},
        {"id": "2:3", "name": "Dangling ref", "type": "RECTANGLE",
         "boundVariables": {"fills": {"type": "VARIABLE_ALIAS", "id": "VariableID:9:77"},
                            "width": 42}},
        {"id": "2:4", "name": "Ghost swatch", "type": "RECTANGLE",
         "boundVariables": {"fills": {"type": "VARIABLE_ALIAS", "id": "VariableID:9:5"}}}
      ]
    }
  ],
  "variables": {
    "9:1": {"id": "9:1", "name": "Color/Primary", "resolvedType": "COLOR", "collectionId": "c1",
            "valuesByMode": {
              "m1": {"r": 0.06666666666666667, "g": 0.13333333333333333, "b": 0.2},
              "m2": {"r": 0.9333333333333333, "g": 0.8666666666666667, "b": 0.8}}},
    "9:2": {"id": "9:2", "name": "Color/Accent", "resolvedType": "COLOR", "collectionId": "c1",
            "valuesByMode": {
              "m1": {"type": "VARIABLE_ALIAS", "id": "9:1"},
              "m2": {"type": "VARIABLE_ALIAS", "id": "9:99"}}},
    "9:4": {"id": "9:4", "name": "Theme/Surface", "resolvedType": "COLOR", "collectionId": "c2",
            "valuesByMode": {"m3": {"r": 1, "g": 1, "b": 1}}},
    "9:5": {"id": "9:5", "name": "Legacy/Accent", "resolvedType": "COLOR", "collectionId": "c3",
            "valuesByMode": {"m4": {"r": 0, "g": 0, "b": 0}}}
  },
  "collections": {
    "c1": {"id": "c1", "name": "Core", "remote": false, "key": "",
           "modes": [{"modeId": "m1", "name": "Light"}, {"modeId": "m2", "name": "Dark"}]},
    "c2": {"id": "c2", "name": "Theme", "remote": true, "key": "acme/theme-lib",
           "modes": [{"modeId": "m3", "name": "Default"}]},
    "c3": {"id": "c3", "name": "Legacy", "remote": true, "key": "acme/old-lib",
           "modes": [{"modeId": "m4", "name": "Default"}]}
  },
  "components": {
    "comp-local": {"id": "comp-local", "name": "Button", "remote": false, "libraryKey": ""},
    "comp-remote": {"id": "comp-remote", "name": "Chip", "remote": true, "libraryKey": "acme/ui-kit"}
  },
  "libraries": ["acme/theme-lib", "acme/ui-kit"]
}`

func fixtureDocument(t *testing.T) *document.Document {
	t.Helper()
	return decodeDoc(t, fixtureJSON)
}

func decodeDoc(t *testing.T, raw string) *document.Document {
	t.Helper()
	doc, err := document.Decode([]byte(raw), nil)
	require.NoError(t, err)
	return doc
}

func fixtureSession(t *testing.T, doc *document.Document, opts Options) *Session {
	t.Helper()
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return NewSession(doc, kv, opts)
}

// brokenLibraryOracle makes library enumeration fail, for exercising
// the ghost-detection fallback policy.
type brokenLibraryOracle struct {
	document.Oracle
}

func (o *brokenLibraryOracle) LibraryKeys(context.Context) (map[string]struct{}, error) {
	return nil, errors.New("host unavailable")
}

// collectIDs returns every node id in the subtree rooted at n.
func collectIDs(n document.Node, into map[string]struct{}) {
	into[n.ID()] = struct{}{}
	if c, ok := n.(document.HasChildren); ok {
		for _, child := range c.Children() {
			collectIDs(child, into)
		}
	}
}
