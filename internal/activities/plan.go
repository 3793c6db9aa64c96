package activities

import (
	"context"
	"fmt"
	"strings"

	"go.temporal.io/sdk/activity"

	"github.com/draftwright/draftwright/internal/blog"
	"github.com/draftwright/draftwright/internal/llm"
)

// Plan converts topic + mode + evidence into a structured section plan.
func (a *Activities) Plan(ctx context.Context, in PlanInput) (PlanResult, error) {
	logger := activity.GetLogger(ctx)

	var plan blog.Plan
	err := a.llm.GenerateInto(ctx, llm.GenerateRequest{
		Messages: []llm.Message{
			{Role: "system", Content: a.prompts.Planner()},
			{Role: "user", Content: formatPlanContext(in)},
		},
		OutputSchema: "plan",
	}, &plan)
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan topic: %w", err)
	}

	finalizePlan(&plan, in.Mode)
	if err := plan.Validate(); err != nil {
		return PlanResult{}, fmt.Errorf("generated plan failed validation: %w", err)
	}

	logger.Info("Planned blog post",
		"title", plan.BlogTitle,
		"kind", string(plan.BlogKind),
		"tasks", len(plan.Tasks),
	)
	return PlanResult{Plan: plan}, nil
}

// finalizePlan applies deterministic post-conditions to the advisory model
// output. open_book always produces a news roundup, no matter what kind the
// model assigned; a missing kind defaults to explainer.
func finalizePlan(plan *blog.Plan, mode blog.Mode) {
	if mode == blog.ModeOpenBook {
		plan.BlogKind = blog.KindNewsRoundup
		return
	}
	if plan.BlogKind == "" {
		plan.BlogKind = blog.KindExplainer
	}
}

func formatPlanContext(in PlanInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nMode: %s\nAs-of: %s (recency_days=%d)\n",
		in.Topic, in.Mode, in.AsOf, in.RecencyDays)
	if in.Mode == blog.ModeOpenBook {
		b.WriteString("Force blog_kind=news_roundup\n")
	}
	b.WriteString("\nEvidence (ONLY use for fresh claims; may be empty):\n")
	for i, e := range in.Evidence {
		if i >= 16 {
			break
		}
		date := e.PublishedAt
		if date == "" {
			date = "date:unknown"
		}
		fmt.Fprintf(&b, "- %s | %s | %s\n", e.Title, e.URL, date)
		if e.Snippet != "" {
			fmt.Fprintf(&b, "  %s\n", e.Snippet)
		}
	}
	b.WriteString("\nInstruction: If mode=open_book, your plan must NOT drift into a tutorial.\n")
	return b.String()
}
