package blog

import (
	"fmt"
	"time"
)

// Mode classifies how freshness-dependent a topic is.
type Mode string

const (
	ModeClosedBook Mode = "closed_book"
	ModeHybrid     Mode = "hybrid"
	ModeOpenBook   Mode = "open_book"
)

// Recency windows per mode, in days. Applied as a hard override after
// routing; the generation backend's opinion is advisory only.
const (
	RecencyDaysOpenBook   = 7
	RecencyDaysHybrid     = 45
	RecencyDaysClosedBook = 3650
)

// ParseMode normalizes a mode string coming back from the generation
// backend. Unknown values fall back to closed_book, the least
// freshness-sensitive mode.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeClosedBook, ModeHybrid, ModeOpenBook:
		return Mode(s)
	}
	return ModeClosedBook
}

// RecencyDays returns the evidence freshness window for the mode.
func (m Mode) RecencyDays() int {
	switch m {
	case ModeOpenBook:
		return RecencyDaysOpenBook
	case ModeHybrid:
		return RecencyDaysHybrid
	default:
		return RecencyDaysClosedBook
	}
}

// BlogKind is the genre of the planned post. Workers use it to avoid
// drifting between genres mid-document.
type BlogKind string

const (
	KindExplainer    BlogKind = "explainer"
	KindTutorial     BlogKind = "tutorial"
	KindNewsRoundup  BlogKind = "news_roundup"
	KindComparison   BlogKind = "comparison"
	KindSystemDesign BlogKind = "system_design"
)

// EvidenceItem is one deduplicated, search-derived fact usable for
// grounding generated text. URL is the unique key. PublishedAt is an ISO
// date ("2026-01-29") or empty when the date could not be inferred; it is
// never guessed.
type EvidenceItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
	Source      string `json:"source,omitempty"`
}

// PublishedDate parses PublishedAt, tolerating a trailing time component.
// Returns false when the field is empty or unparseable.
func (e EvidenceItem) PublishedDate() (time.Time, bool) {
	s := e.PublishedAt
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Task describes one independent section of the planned post. ID is the
// sole stable ordering key for final assembly.
type Task struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Goal             string   `json:"goal"`
	Bullets          []string `json:"bullets"`
	TargetWords      int      `json:"target_words"`
	Tags             []string `json:"tags,omitempty"`
	RequiresResearch bool     `json:"requires_research"`
	RequiresCitation bool     `json:"requires_citations"`
	RequiresCode     bool     `json:"requires_code"`
}

// Plan is the structured outline of a document as an ordered list of
// independent section specs. Immutable once constructed.
type Plan struct {
	BlogTitle   string   `json:"blog_title"`
	Audience    string   `json:"audience"`
	Tone        string   `json:"tone"`
	BlogKind    BlogKind `json:"blog_kind"`
	Constraints []string `json:"constraints,omitempty"`
	Tasks       []Task   `json:"tasks"`
}

// Validate enforces the structural invariants the engine relies on:
// tasks non-empty and task IDs unique. Word counts and bullet ranges are
// a prompt contract, not a structural one.
func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("plan %q has no tasks", p.BlogTitle)
	}
	seen := make(map[int]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if seen[t.ID] {
			return fmt.Errorf("plan %q has duplicate task id %d", p.BlogTitle, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Section is one completed unit of section-writer output. Sections
// accumulate in completion order and are reordered by TaskID at reduce
// time.
type Section struct {
	TaskID   int    `json:"task_id"`
	Markdown string `json:"markdown"`
}
