package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultsWithoutFile(t *testing.T) {
	s, err := NewStore("", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, strings.Contains(s.Router(), "routing module"))
	assert.True(t, strings.Contains(s.Section(), "ONE section"))
}

func TestMissingOverrideFileIsNotFatal(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "prompts.yaml"), zap.NewNop())
	require.NoError(t, err)
	assert.NotEmpty(t, s.Planner())
}

func TestOverridesMergeWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("router: custom router text\n"), 0o644))

	s, err := NewStore(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "custom router text", s.Router())
	// Untouched entries keep their defaults.
	assert.True(t, strings.Contains(s.Research(), "research synthesizer"))
}

func TestMalformedOverrideFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644))

	_, err := NewStore(path, zap.NewNop())
	assert.Error(t, err)
}
