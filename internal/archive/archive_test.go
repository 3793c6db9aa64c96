package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Go Generics: The Missing Guide!": "go_generics_the_missing_guide",
		"  Spaced   Out  ":                "spaced_out",
		"snake_case-kept":                 "snake_case-kept",
		"日本語タイトル":                         "blog",
		"":                                "blog",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), "input %q", in)
	}
}

func TestBundleRoundTrip(t *testing.T) {
	data, err := Bundle("# Title\n\nbody\n", "title.md")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "title.md", zr.File[0].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody\n", string(content))
}

func TestWriteCreatesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	mdPath, zipPath, err := Write(dir, "A Weekly AI Roundup", "# A Weekly AI Roundup\n\ncontent\n")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "a_weekly_ai_roundup.md"), mdPath)
	assert.Equal(t, filepath.Join(dir, "a_weekly_ai_roundup.zip"), zipPath)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "content")

	_, err = os.Stat(zipPath)
	assert.NoError(t, err)
}
