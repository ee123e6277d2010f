package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsbingo17/tms-migrate/pkg/codec"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"processing": {"sourceProvider": "zephyr", "targetProvider": "qtest", "format": "XML"},
		"mappingFile": "mappings.yaml"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, codec.DefaultChunkSize, cfg.Codec.ChunkSize)
	assert.Equal(t, int64(codec.DefaultMemoryLimit), cfg.Codec.MemoryLimit)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentJobs)
}

func TestLoadConfigRejectsBadBackend(t *testing.T) {
	path := writeConfig(t, `{
		"storage": {"backend": "cassandra"},
		"processing": {"sourceProvider": "zephyr", "targetProvider": "qtest"}
	}`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRequiresMongoParameters(t *testing.T) {
	path := writeConfig(t, `{
		"storage": {"backend": "mongodb", "mongodb": {"connectionString": "mongodb://localhost"}},
		"processing": {"sourceProvider": "zephyr", "targetProvider": "qtest"}
	}`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadFormat(t *testing.T) {
	path := writeConfig(t, `{
		"processing": {"sourceProvider": "zephyr", "targetProvider": "qtest", "format": "PDF"}
	}`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRequiresProviders(t *testing.T) {
	path := writeConfig(t, `{"processing": {"targetProvider": "qtest"}}`)
	_, err := LoadConfig(path)
	assert.Error(t, err)

	path = writeConfig(t, `{"processing": {"sourceProvider": "zephyr"}}`)
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsChunkLargerThanMemoryLimit(t *testing.T) {
	path := writeConfig(t, `{
		"processing": {"sourceProvider": "zephyr", "targetProvider": "qtest"},
		"codec": {"chunkSize": 1024, "memoryLimit": 512}
	}`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
