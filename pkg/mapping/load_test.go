package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeTempFile(t, "mappings.json", `[
		{"sourceId": "name", "targetId": "title"},
		{"sourceId": "priority", "targetId": "severity",
		 "transformation": {"type": "MAP_VALUES", "params": {"mappings": {"HIGH": "P1"}}}}
	]`)

	mappings, err := Load(path)
	require.NoError(t, err)
	require.Len(t, mappings, 2)

	spec, err := mappings[0].Spec()
	require.NoError(t, err)
	assert.Nil(t, spec)

	spec, err = mappings[1].Spec()
	require.NoError(t, err)
	assert.Equal(t, TypeMapValues, spec.Type)
}

func TestLoadYAML(t *testing.T) {
	path := writeTempFile(t, "mappings.yaml", `
- sourceId: name
  targetId: title
- sourceId: id
  targetId: key
  transformation:
    type: CONCAT
    params:
      separator: " - "
      fields:
        - id
        - name
`)

	mappings, err := Load(path)
	require.NoError(t, err)
	require.Len(t, mappings, 2)

	spec, err := mappings[1].Spec()
	require.NoError(t, err)
	assert.Equal(t, TypeConcat, spec.Type)
	assert.Equal(t, " - ", spec.Params["separator"])
	assert.Equal(t, []interface{}{"id", "name"}, spec.Params["fields"])
}

func TestLoadRejectsIncompleteMappings(t *testing.T) {
	path := writeTempFile(t, "mappings.json", `[{"sourceId": "", "targetId": "x"}]`)
	_, err := Load(path)
	assert.Error(t, err)

	path = writeTempFile(t, "mappings2.json", `[{"sourceId": "x", "targetId": ""}]`)
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
