package activities

import "github.com/draftwright/draftwright/internal/blog"

// Capability caps enforced by the research stage regardless of what the
// router produced.
const (
	MaxQueries           = 10
	MaxResultsPerQuery   = 6
	MaxEvidenceForWorker = 20
)

// RouteInput is the input for request routing.
type RouteInput struct {
	Topic string
	AsOf  string // ISO date
}

// RouteResult is the routing decision. RecencyDays is derived from Mode by
// policy, never taken from the generation backend.
type RouteResult struct {
	NeedsResearch bool
	Mode          blog.Mode
	Queries       []string
	RecencyDays   int
	Reason        string
}

// ResearchInput is the input for the research stage.
type ResearchInput struct {
	Queries     []string
	AsOf        string
	RecencyDays int
	Mode        blog.Mode
}

// ResearchResult carries the normalized evidence list. The list replaces
// any previous evidence wholesale.
type ResearchResult struct {
	Evidence []blog.EvidenceItem
}

// PlanInput is the input for outline planning.
type PlanInput struct {
	Topic       string
	Mode        blog.Mode
	AsOf        string
	RecencyDays int
	Evidence    []blog.EvidenceItem
}

// PlanResult carries the validated plan.
type PlanResult struct {
	Plan blog.Plan
}

// SectionInput is one self-contained unit of section-writing work. It is a
// value copy: workers share no mutable state.
type SectionInput struct {
	Task        blog.Task
	Topic       string
	Mode        blog.Mode
	AsOf        string
	RecencyDays int
	Plan        blog.Plan
	Evidence    []blog.EvidenceItem
}

// SectionResult is exactly one (task_id, markdown) pair.
type SectionResult struct {
	TaskID   int
	Markdown string
}

// PersistInput is the input for the document write sink.
type PersistInput struct {
	RunID          string
	Topic          string
	Mode           blog.Mode
	BlogKind       blog.BlogKind
	Title          string
	Final          string
	SectionCount   int
	EvidenceCount  int
	ElapsedSeconds float64
}

// PersistResult reports where the artifacts landed.
type PersistResult struct {
	MarkdownPath string
	ArchivePath  string
}
