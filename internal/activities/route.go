package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/draftwright/draftwright/internal/blog"
	"github.com/draftwright/draftwright/internal/llm"
	"github.com/draftwright/draftwright/internal/metrics"
)

// routerDecision is the structured value the generation service returns
// for the router_decision schema.
type routerDecision struct {
	NeedsResearch bool     `json:"needs_research"`
	Mode          string   `json:"mode"`
	Reason        string   `json:"reason"`
	Queries       []string `json:"queries"`
}

// Route classifies the topic into a processing mode and decides whether
// research is needed before planning.
func (a *Activities) Route(ctx context.Context, in RouteInput) (RouteResult, error) {
	logger := activity.GetLogger(ctx)

	var decision routerDecision
	err := a.llm.GenerateInto(ctx, llm.GenerateRequest{
		Messages: []llm.Message{
			{Role: "system", Content: a.prompts.Router()},
			{Role: "user", Content: fmt.Sprintf("Topic: %s\nAs-of date: %s", in.Topic, in.AsOf)},
		},
		OutputSchema: "router_decision",
	}, &decision)
	if err != nil {
		return RouteResult{}, fmt.Errorf("route topic: %w", err)
	}

	result := applyRoutePolicy(decision)
	metrics.WorkflowsStarted.WithLabelValues(string(result.Mode)).Inc()
	logger.Info("Routed topic",
		"mode", string(result.Mode),
		"needs_research", result.NeedsResearch,
		"queries", len(result.Queries),
		"recency_days", result.RecencyDays,
	)
	return result, nil
}

// applyRoutePolicy turns the advisory model output into the binding
// routing decision. The mode→recency mapping is a hard override: whatever
// window the model suggested is ignored. Queries are dropped entirely when
// no research is needed and capped at MaxQueries otherwise.
func applyRoutePolicy(decision routerDecision) RouteResult {
	mode := blog.ParseMode(decision.Mode)
	result := RouteResult{
		NeedsResearch: decision.NeedsResearch,
		Mode:          mode,
		RecencyDays:   mode.RecencyDays(),
		Reason:        decision.Reason,
	}
	if !decision.NeedsResearch {
		return result
	}
	queries := decision.Queries
	if len(queries) > MaxQueries {
		queries = queries[:MaxQueries]
	}
	result.Queries = queries
	return result
}
