package activities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/draftwright/draftwright/internal/llm"
	"github.com/draftwright/draftwright/internal/metrics"
)

// WriteSection executes one independent section-writing unit of work. It
// makes exactly one generation call and returns exactly one
// (task_id, markdown) pair.
func (a *Activities) WriteSection(ctx context.Context, in SectionInput) (SectionResult, error) {
	logger := activity.GetLogger(ctx)
	start := time.Now()

	resp, err := a.llm.Generate(ctx, llm.GenerateRequest{
		Messages: []llm.Message{
			{Role: "system", Content: a.prompts.Section()},
			{Role: "user", Content: formatSectionContext(in)},
		},
	})
	if err != nil {
		metrics.SectionsWritten.WithLabelValues("error").Inc()
		return SectionResult{}, fmt.Errorf("write section %d (%s): %w", in.Task.ID, in.Task.Title, err)
	}

	markdown := strings.TrimSpace(resp.Text)
	if markdown == "" {
		metrics.SectionsWritten.WithLabelValues("error").Inc()
		return SectionResult{}, fmt.Errorf("section %d returned empty markdown", in.Task.ID)
	}

	metrics.SectionsWritten.WithLabelValues("ok").Inc()
	metrics.SectionDuration.Observe(time.Since(start).Seconds())
	logger.Info("Section written",
		"task_id", in.Task.ID,
		"title", in.Task.Title,
		"chars", len(markdown),
	)
	return SectionResult{TaskID: in.Task.ID, Markdown: markdown}, nil
}

func formatSectionContext(in SectionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Blog title: %s\nAudience: %s\nTone: %s\nBlog kind: %s\nConstraints: %s\n",
		in.Plan.BlogTitle, in.Plan.Audience, in.Plan.Tone, in.Plan.BlogKind,
		strings.Join(in.Plan.Constraints, "; "))
	fmt.Fprintf(&b, "Topic: %s\nMode: %s\nAs-of: %s (recency_days=%d)\n\n",
		in.Topic, in.Mode, in.AsOf, in.RecencyDays)
	fmt.Fprintf(&b, "Section title: %s\nGoal: %s\nTarget words: %d\nTags: %s\n",
		in.Task.Title, in.Task.Goal, in.Task.TargetWords, strings.Join(in.Task.Tags, ", "))
	fmt.Fprintf(&b, "requires_research: %t\nrequires_citations: %t\nrequires_code: %t\n",
		in.Task.RequiresResearch, in.Task.RequiresCitation, in.Task.RequiresCode)
	b.WriteString("Bullets:")
	for _, bullet := range in.Task.Bullets {
		fmt.Fprintf(&b, "\n- %s", bullet)
	}

	b.WriteString("\n\nEvidence (ONLY use these URLs when citing):\n")
	for i, e := range in.Evidence {
		if i >= MaxEvidenceForWorker {
			break
		}
		date := e.PublishedAt
		if date == "" {
			date = "date:unknown"
		}
		fmt.Fprintf(&b, "- %s | %s | %s\n", e.Title, e.URL, date)
	}
	return b.String()
}
