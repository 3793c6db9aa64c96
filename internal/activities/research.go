package activities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/draftwright/draftwright/internal/blog"
	"github.com/draftwright/draftwright/internal/evidence"
	"github.com/draftwright/draftwright/internal/llm"
	"github.com/draftwright/draftwright/internal/metrics"
	"github.com/draftwright/draftwright/internal/search"
)

// evidencePack is the structured value returned for the evidence_pack
// schema.
type evidencePack struct {
	Evidence []blog.EvidenceItem `json:"evidence"`
}

// Research runs every routed query against the search backend, synthesizes
// the raw hits into typed evidence through one structured extraction call,
// and normalizes the result (URL dedupe always, recency gate in open_book).
func (a *Activities) Research(ctx context.Context, in ResearchInput) (ResearchResult, error) {
	logger := activity.GetLogger(ctx)

	queries := in.Queries
	if len(queries) > MaxQueries {
		queries = queries[:MaxQueries]
	}

	var raw []search.RawResult
	for _, q := range queries {
		results, err := a.search.Search(ctx, q, MaxResultsPerQuery)
		if err != nil {
			return ResearchResult{}, fmt.Errorf("search %q: %w", q, err)
		}
		raw = append(raw, results...)
	}

	// No raw hits: return empty evidence without burning a generation call.
	if len(raw) == 0 {
		logger.Info("Research found no raw results", "queries", len(queries))
		return ResearchResult{Evidence: []blog.EvidenceItem{}}, nil
	}

	var pack evidencePack
	err := a.llm.GenerateInto(ctx, llm.GenerateRequest{
		Messages: []llm.Message{
			{Role: "system", Content: a.prompts.Research()},
			{Role: "user", Content: formatRawResults(in.AsOf, in.RecencyDays, raw)},
		},
		OutputSchema: "evidence_pack",
	}, &pack)
	if err != nil {
		return ResearchResult{}, fmt.Errorf("extract evidence: %w", err)
	}
	metrics.EvidenceExtracted.Add(float64(len(pack.Evidence)))

	asOf, err := time.Parse("2006-01-02", in.AsOf)
	if err != nil {
		return ResearchResult{}, fmt.Errorf("parse as_of %q: %w", in.AsOf, err)
	}

	deduped := evidence.Dedupe(pack.Evidence)
	if dropped := len(pack.Evidence) - len(deduped); dropped > 0 {
		metrics.EvidenceDropped.WithLabelValues("duplicate_url").Add(float64(dropped))
	}
	items := deduped
	if in.Mode == blog.ModeOpenBook {
		fresh := evidence.FilterFresh(items, asOf, in.RecencyDays)
		for _, it := range items {
			if _, ok := it.PublishedDate(); !ok {
				metrics.EvidenceDropped.WithLabelValues("undated").Inc()
			}
		}
		if dropped := len(items) - len(fresh); dropped > 0 {
			logger.Info("Recency gate dropped evidence",
				"before", len(items),
				"after", len(fresh),
			)
		}
		items = fresh
	}

	logger.Info("Research completed",
		"raw_results", len(raw),
		"evidence", len(items),
		"mode", string(in.Mode),
	)
	return ResearchResult{Evidence: items}, nil
}

func formatRawResults(asOf string, recencyDays int, raw []search.RawResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As-of date: %s\nRecency days: %d\n\nRaw results:\n", asOf, recencyDays)
	for _, r := range raw {
		fmt.Fprintf(&b, "- title: %s\n  url: %s\n", r.Title, r.URL)
		if r.PublishedAt != "" {
			fmt.Fprintf(&b, "  published_at: %s\n", r.PublishedAt)
		}
		if r.Source != "" {
			fmt.Fprintf(&b, "  source: %s\n", r.Source)
		}
		if r.Content != "" {
			fmt.Fprintf(&b, "  content: %s\n", r.Content)
		}
	}
	return b.String()
}
