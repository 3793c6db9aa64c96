// Package archive is the document write sink: one markdown file named from
// the sanitized blog title plus a zip bundle with the same content. Both
// are write-once per request.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9 _-]+`)
	slugCollapse = regexp.MustCompile(`\s+`)
)

// Slug turns a blog title into a safe file basename: lowercase, strip
// everything outside [a-z0-9 _-], spaces to underscores, "blog" fallback.
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.Trim(slugCollapse.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "blog"
	}
	return s
}

// Bundle zips the markdown under its own filename.
func Bundle(markdown, mdFilename string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(mdFilename)
	if err != nil {
		return nil, fmt.Errorf("create zip entry %s: %w", mdFilename, err)
	}
	if _, err := f.Write([]byte(markdown)); err != nil {
		return nil, fmt.Errorf("write zip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Write persists the markdown document and its zip bundle under dir and
// returns both paths.
func Write(dir, title, markdown string) (mdPath, zipPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir %s: %w", dir, err)
	}
	base := Slug(title)
	mdName := base + ".md"
	mdPath = filepath.Join(dir, mdName)
	zipPath = filepath.Join(dir, base+".zip")

	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", mdPath, err)
	}
	bundle, err := Bundle(markdown, mdName)
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(zipPath, bundle, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", zipPath, err)
	}
	return mdPath, zipPath, nil
}
