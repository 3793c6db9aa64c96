package evidence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftwright/draftwright/internal/blog"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestDedupeCollapsesByURL(t *testing.T) {
	items := []blog.EvidenceItem{
		{Title: "first write-up", URL: "https://example.com/a"},
		{Title: "same page, different title", URL: "https://example.com/a"},
		{Title: "another page", URL: "https://example.com/b"},
		{Title: "no url, dropped"},
	}
	out := Dedupe(items)
	require.Len(t, out, 2)
	assert.Equal(t, "first write-up", out[0].Title, "first-seen item wins")
	assert.Equal(t, "https://example.com/b", out[1].URL)
}

func TestFilterFreshWindow(t *testing.T) {
	asOf := mustDate(t, "2026-01-29")
	items := []blog.EvidenceItem{
		{URL: "https://a", PublishedAt: "2026-01-20"}, // 9 days old, outside the 7-day window
		{URL: "https://b", PublishedAt: "2026-01-23"}, // inside
		{URL: "https://c"},                            // no date, always excluded
		{URL: "https://d", PublishedAt: "2026-01-22"}, // exactly on the cutoff, kept
	}
	out := FilterFresh(items, asOf, 7)
	urls := make([]string, 0, len(out))
	for _, it := range out {
		urls = append(urls, it.URL)
	}
	assert.Equal(t, []string{"https://b", "https://d"}, urls)
}

func TestNormalizeGatesOnlyOpenBook(t *testing.T) {
	asOf := mustDate(t, "2026-01-29")
	items := []blog.EvidenceItem{
		{URL: "https://a", PublishedAt: "2025-06-01"},
		{URL: "https://b"},
	}

	// Hybrid keeps undated items; only dedupe applies.
	out := Normalize(items, blog.ModeHybrid, asOf, blog.ModeHybrid.RecencyDays())
	assert.Len(t, out, 2)

	// Open book drops both: one stale, one undated.
	out = Normalize(items, blog.ModeOpenBook, asOf, blog.ModeOpenBook.RecencyDays())
	assert.Empty(t, out)
}
