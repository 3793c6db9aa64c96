package workflows

import (
	"github.com/draftwright/draftwright/internal/blog"
)

// BlogInput is the request that starts one blog workflow.
type BlogInput struct {
	Topic string
	AsOf  string // ISO date; the freshness anchor for the whole request
	RunID string // assigned by the caller; falls back to the workflow ID

	// Tuning recorded into workflow history so replays stay deterministic.
	MaxConcurrentSections int
	SectionTimeoutSeconds int
	StageTimeoutSeconds   int
}

// BlogResult is the terminal output of one blog workflow. It is also the
// shape the gateway returns for completed runs.
type BlogResult struct {
	Final         string        `json:"final"`
	Title         string        `json:"title"`
	Mode          blog.Mode     `json:"mode"`
	BlogKind      blog.BlogKind `json:"blog_kind"`
	SectionCount  int           `json:"section_count"`
	EvidenceCount int           `json:"evidence_count"`
	MarkdownPath  string        `json:"markdown_path"`
	ArchivePath   string        `json:"archive_path"`
}

// BlogState is the single state container threaded through the pipeline.
// Each field is written by exactly one stage: Mode/NeedsResearch/Queries/
// RecencyDays by routing, Evidence by research (wholesale replacement),
// Plan by planning, Sections by the fan-out workers (append-only merge),
// Final by the reducer.
type BlogState struct {
	Topic         string
	AsOf          string
	Mode          blog.Mode
	NeedsResearch bool
	Queries       []string
	RecencyDays   int
	Evidence      []blog.EvidenceItem
	Plan          *blog.Plan
	Sections      []blog.Section
	Final         string
}
