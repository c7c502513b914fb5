package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsyslab/tokenlens/pkg/ignore"
	"github.com/dsyslab/tokenlens/pkg/scan"
)

const cliDocJSON = `{
  "id": "doc-cli",
  "name": "CLI fixture",
  "pages": [
    {
      "id": "0:1", "name": "Page 1", "type": "PAGE",
      "children": [
        {"id": "1:1", "name": "Swatch", "type": "RECTANGLE",
         "boundVariables": {"fills": {"type": "VARIABLE_ALIAS", "id": "VariableID:9:1"}}},
        {"id": "1:2", "name": "Divider", "type": "RECTANGLE",
         "strokes": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}]}
      ]
    }
  ],
  "variables": {
    "9:1": {"id": "9:1", "name": "Color/Primary", "resolvedType": "COLOR", "collectionId": "c1",
            "valuesByMode": {"m1": {"r": 0, "g": 0, "b": 0}}}
  },
  "collections": {
    "c1": {"id": "c1", "name": "Core", "remote": false, "key": "",
           "modes": [{"modeId": "m1", "name": "Default"}]}
  },
  "components": {},
  "libraries": []
}`

// writeFixture sets up a working directory with a config, document and
// storage path, mirroring an initialized project.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	docPath := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(docPath, []byte(cliDocJSON), 0o644))
	require.NoError(t, writeProjectConfig(ProjectConfig{
		Version:      "1",
		DocumentPath: docPath,
		StoragePath:  defaultStoragePath,
	}))
	return docPath
}

func parseScanFlags(t *testing.T, args ...string) *scanFlags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	sf := addScanFlags(fs)
	require.NoError(t, fs.Parse(args))
	return sf
}

func TestOpenEnvFromProjectConfig(t *testing.T) {
	writeFixture(t)

	sf := parseScanFlags(t)
	env, err := openEnv(sf.commonFlags)
	require.NoError(t, err)
	defer env.close()

	assert.Equal(t, "doc-cli", env.doc.DocumentID())
	_, err = os.Stat(defaultStoragePath)
	assert.NoError(t, err)
}

func TestOpenEnvWithoutDocumentFails(t *testing.T) {
	t.Chdir(t.TempDir())

	sf := parseScanFlags(t)
	_, err := openEnv(sf.commonFlags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--doc")
}

func TestScanSessionThroughCLIWiring(t *testing.T) {
	writeFixture(t)

	sf := parseScanFlags(t, "--scope", "page")
	env, err := openEnv(sf.commonFlags)
	require.NoError(t, err)
	defer env.close()

	session, err := env.newSession(sf)
	require.NoError(t, err)

	res, err := session.GetVariableCollections(context.Background(), scan.Scope(*sf.scope))
	require.NoError(t, err)
	require.Len(t, res.Collections, 1)
	assert.Equal(t, "Core", res.Collections[0].Name)
	require.Len(t, res.Unbound, 1)
	assert.Equal(t, "1:2", res.Unbound[0].ID)
}

func TestNewSessionRejectsUnknownPage(t *testing.T) {
	writeFixture(t)

	sf := parseScanFlags(t, "--page", "Nope")
	env, err := openEnv(sf.commonFlags)
	require.NoError(t, err)
	defer env.close()

	_, err = env.newSession(sf)
	assert.Error(t, err)
}

func TestEditIgnoresByNodeAndValue(t *testing.T) {
	writeFixture(t)

	sf := parseScanFlags(t)
	env, err := openEnv(sf.commonFlags)
	require.NoError(t, err)
	defer env.close()

	store := ignore.NewStore(env.kv, env.doc.DocumentID(), env.log)
	ctx := context.Background()

	require.NoError(t, editIgnores(ctx, store, "1:2", "", "", true))
	require.NoError(t, editIgnores(ctx, store, "", "stroke", "#FF0000", true))

	// Both-or-neither argument shapes are rejected.
	assert.Error(t, editIgnores(ctx, store, "1:2", "stroke", "#FF0000", true))
	assert.Error(t, editIgnores(ctx, store, "", "", "", true))
	assert.Error(t, editIgnores(ctx, store, "", "fill", "", true))
	assert.Error(t, editIgnores(ctx, store, "", "opacity", "", true))

	ids, err := store.Elements(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1:2"}, ids)

	values, err := store.Values(ctx)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, ignore.ValueStroke, values[0].ValueType)

	require.NoError(t, editIgnores(ctx, store, "1:2", "", "", false))
	ids, err = store.Elements(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
