// Package activities implements the pipeline stages as Temporal activities.
// Dependencies are held on the Activities struct and injected once at
// worker start, so tests can substitute fakes without package globals.
package activities

import (
	"go.uber.org/zap"

	"github.com/draftwright/draftwright/internal/db"
	"github.com/draftwright/draftwright/internal/llm"
	"github.com/draftwright/draftwright/internal/prompts"
	"github.com/draftwright/draftwright/internal/search"
)

// Activities bundles the stage implementations and their collaborators.
type Activities struct {
	llm       *llm.Client
	search    *search.Client
	prompts   *prompts.Store
	store     *db.Store // optional; nil disables run records
	outputDir string
	logger    *zap.Logger
}

// New wires an Activities instance. store may be nil.
func New(llmClient *llm.Client, searchClient *search.Client, promptStore *prompts.Store, store *db.Store, outputDir string, logger *zap.Logger) *Activities {
	return &Activities{
		llm:       llmClient,
		search:    searchClient,
		prompts:   promptStore,
		store:     store,
		outputDir: outputDir,
		logger:    logger,
	}
}
