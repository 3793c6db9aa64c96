// Package evidence normalizes raw search-derived facts into the canonical
// evidence list the planner and section writers consume.
package evidence

import (
	"time"

	"github.com/draftwright/draftwright/internal/blog"
)

// Dedupe collapses items sharing a URL down to the first-seen item and
// drops items without a URL. Input order is preserved, which keeps the
// result deterministic for a given extraction batch.
func Dedupe(items []blog.EvidenceItem) []blog.EvidenceItem {
	out := make([]blog.EvidenceItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.URL == "" || seen[it.URL] {
			continue
		}
		seen[it.URL] = true
		out = append(out, it)
	}
	return out
}

// FilterFresh applies the hard recency gate: only items whose published
// date parses and falls on or after asOf minus recencyDays survive.
// Items without a verifiable date are always dropped, even when topically
// relevant, because their freshness cannot be checked.
func FilterFresh(items []blog.EvidenceItem, asOf time.Time, recencyDays int) []blog.EvidenceItem {
	cutoff := asOf.AddDate(0, 0, -recencyDays)
	out := make([]blog.EvidenceItem, 0, len(items))
	for _, it := range items {
		d, ok := it.PublishedDate()
		if !ok || d.Before(cutoff) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Normalize is the full pipeline applied after structured extraction:
// dedupe always, recency gate only in open_book mode.
func Normalize(items []blog.EvidenceItem, mode blog.Mode, asOf time.Time, recencyDays int) []blog.EvidenceItem {
	out := Dedupe(items)
	if mode == blog.ModeOpenBook {
		out = FilterFresh(out, asOf, recencyDays)
	}
	return out
}
