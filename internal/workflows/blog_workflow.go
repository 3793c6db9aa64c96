package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/draftwright/draftwright/internal/activities"
	"github.com/draftwright/draftwright/internal/blog"
)

// TaskQueue is the Temporal task queue the worker and all starters share.
const TaskQueue = "draftwright"

// Activity names as registered on the worker.
const (
	RouteActivity        = "Route"
	ResearchActivity     = "Research"
	PlanActivity         = "Plan"
	WriteSectionActivity = "WriteSection"
	PersistActivity      = "Persist"
)

const (
	defaultMaxConcurrentSections = 5
	defaultStageTimeout          = 2 * time.Minute
	defaultSectionTimeout        = 3 * time.Minute
)

// BlogWorkflow drives one topic through the full pipeline:
// route, research when required, plan, parallel section writing, reduce,
// persist. Section workers run concurrently under a semaphore and the
// workflow joins on all of them before reducing. Any section failure fails
// the whole run; a partial blog is never assembled.
func BlogWorkflow(ctx workflow.Context, input BlogInput) (BlogResult, error) {
	logger := workflow.GetLogger(ctx)

	if input.Topic == "" {
		return BlogResult{}, temporal.NewNonRetryableApplicationError(
			"topic is required", "invalid_input", nil)
	}
	if input.AsOf == "" {
		input.AsOf = workflow.Now(ctx).UTC().Format("2006-01-02")
	}
	if input.RunID == "" {
		input.RunID = workflow.GetInfo(ctx).WorkflowExecution.ID
	}
	maxConcurrent := input.MaxConcurrentSections
	if maxConcurrent < 1 {
		maxConcurrent = defaultMaxConcurrentSections
	}
	stageTimeout := defaultStageTimeout
	if input.StageTimeoutSeconds > 0 {
		stageTimeout = time.Duration(input.StageTimeoutSeconds) * time.Second
	}
	sectionTimeout := defaultSectionTimeout
	if input.SectionTimeoutSeconds > 0 {
		sectionTimeout = time.Duration(input.SectionTimeoutSeconds) * time.Second
	}

	// Generation and search calls are not retried at this layer: a
	// malformed structured response or a failed search propagates to the
	// caller rather than re-running the backends.
	stageCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: stageTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	logger.Info("Blog workflow started",
		"run_id", input.RunID,
		"topic", input.Topic,
		"as_of", input.AsOf,
	)

	startedAt := workflow.Now(ctx)
	state := &BlogState{Topic: input.Topic, AsOf: input.AsOf}

	// Stage 1: routing.
	var route activities.RouteResult
	if err := workflow.ExecuteActivity(stageCtx, RouteActivity, activities.RouteInput{
		Topic: input.Topic,
		AsOf:  input.AsOf,
	}).Get(stageCtx, &route); err != nil {
		return BlogResult{}, fmt.Errorf("routing failed: %w", err)
	}
	state.Mode = route.Mode
	state.NeedsResearch = route.NeedsResearch
	state.Queries = route.Queries
	state.RecencyDays = route.RecencyDays

	// Stage 2: research, only when the router asked for it.
	if state.NeedsResearch {
		var research activities.ResearchResult
		if err := workflow.ExecuteActivity(stageCtx, ResearchActivity, activities.ResearchInput{
			Queries:     state.Queries,
			AsOf:        state.AsOf,
			RecencyDays: state.RecencyDays,
			Mode:        state.Mode,
		}).Get(stageCtx, &research); err != nil {
			return BlogResult{}, fmt.Errorf("research failed: %w", err)
		}
		state.Evidence = research.Evidence
		logger.Info("Research complete", "evidence_count", len(state.Evidence))
	}

	// Stage 3: planning.
	var plan activities.PlanResult
	if err := workflow.ExecuteActivity(stageCtx, PlanActivity, activities.PlanInput{
		Topic:       state.Topic,
		Mode:        state.Mode,
		AsOf:        state.AsOf,
		RecencyDays: state.RecencyDays,
		Evidence:    state.Evidence,
	}).Get(stageCtx, &plan); err != nil {
		return BlogResult{}, fmt.Errorf("planning failed: %w", err)
	}
	state.Plan = &plan.Plan

	// Stage 4: fan out one worker per planned task.
	units, err := BuildSectionUnits(state)
	if err != nil {
		return BlogResult{}, err
	}
	logger.Info("Fanning out section workers",
		"task_count", len(units),
		"max_concurrency", maxConcurrent,
	)

	sections, err := executeSections(ctx, units, maxConcurrent, sectionTimeout)
	if err != nil {
		return BlogResult{}, err
	}
	state.Sections = sections

	// Stage 5: deterministic reduce.
	final, err := Reduce(state.Plan, state.Sections)
	if err != nil {
		return BlogResult{}, err
	}
	state.Final = final

	// Stage 6: persist artifacts.
	var persisted activities.PersistResult
	if err := workflow.ExecuteActivity(stageCtx, PersistActivity, activities.PersistInput{
		RunID:          input.RunID,
		Topic:          state.Topic,
		Mode:           state.Mode,
		BlogKind:       state.Plan.BlogKind,
		Title:          state.Plan.BlogTitle,
		Final:          state.Final,
		SectionCount:   len(state.Sections),
		EvidenceCount:  len(state.Evidence),
		ElapsedSeconds: workflow.Now(ctx).Sub(startedAt).Seconds(),
	}).Get(stageCtx, &persisted); err != nil {
		return BlogResult{}, fmt.Errorf("persist failed: %w", err)
	}

	logger.Info("Blog workflow complete",
		"run_id", input.RunID,
		"sections", len(state.Sections),
		"markdown_path", persisted.MarkdownPath,
	)

	return BlogResult{
		Final:         state.Final,
		Title:         state.Plan.BlogTitle,
		Mode:          state.Mode,
		BlogKind:      state.Plan.BlogKind,
		SectionCount:  len(state.Sections),
		EvidenceCount: len(state.Evidence),
		MarkdownPath:  persisted.MarkdownPath,
		ArchivePath:   persisted.ArchivePath,
	}, nil
}

// sectionOutcome crosses the collection channel from a worker goroutine to
// the barrier loop. Err is a string because outcomes flow through a
// workflow channel.
type sectionOutcome struct {
	Index  int
	Result activities.SectionResult
	Err    string
}

// executeSections runs one WriteSection activity per unit with bounded
// concurrency and blocks until every worker has reported. All-or-nothing:
// the first failure is returned after the join, with no partial merge.
func executeSections(
	ctx workflow.Context,
	units []activities.SectionInput,
	maxConcurrent int,
	timeout time.Duration,
) ([]blog.Section, error) {
	logger := workflow.GetLogger(ctx)

	sectionCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	sem := workflow.NewSemaphore(ctx, int64(maxConcurrent))
	outcomes := workflow.NewChannel(ctx)

	for i, unit := range units {
		i := i
		unit := unit
		workflow.Go(sectionCtx, func(gctx workflow.Context) {
			if err := sem.Acquire(gctx, 1); err != nil {
				outcomes.Send(gctx, sectionOutcome{Index: i, Err: err.Error()})
				return
			}
			defer sem.Release(1)

			var result activities.SectionResult
			err := workflow.ExecuteActivity(gctx, WriteSectionActivity, unit).Get(gctx, &result)
			if err != nil {
				outcomes.Send(gctx, sectionOutcome{Index: i, Err: err.Error()})
				return
			}
			outcomes.Send(gctx, sectionOutcome{Index: i, Result: result})
		})
	}

	// Join barrier: every worker reports exactly once.
	sections := make([]blog.Section, 0, len(units))
	var firstErr error
	for range units {
		var out sectionOutcome
		outcomes.Receive(ctx, &out)
		if out.Err != "" {
			logger.Error("Section worker failed",
				"task_id", units[out.Index].Task.ID,
				"error", out.Err,
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("section for task %d failed: %s", units[out.Index].Task.ID, out.Err)
			}
			continue
		}
		sections = append(sections, blog.Section{TaskID: out.Result.TaskID, Markdown: out.Result.Markdown})
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return sections, nil
}
