package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "draftwright", c.Temporal.TaskQueue)
	assert.Equal(t, 5, c.Workflow.MaxConcurrentSections)
	assert.Equal(t, 15*time.Minute, c.Redis.CacheTTL)
	assert.False(t, c.Database.Enabled)
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
temporal:
  task_queue: writer-queue
workflow:
  max_concurrent_sections: 9
`), 0o644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("GENERATION_SERVICE_URL", "http://localhost:9999")
	t.Setenv("REDIS_ADDR", "localhost:6380")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "writer-queue", c.Temporal.TaskQueue)
	assert.Equal(t, 9, c.Workflow.MaxConcurrentSections)
	assert.Equal(t, "http://localhost:9999", c.Services.GenerationURL)
	assert.True(t, c.Redis.Enabled, "setting REDIS_ADDR enables the cache")
}

func TestLoadClampsConcurrency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workflow:\n  max_concurrent_sections: 0\n"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, c.Workflow.MaxConcurrentSections)
}
