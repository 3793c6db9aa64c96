package workflows

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/draftwright/draftwright/internal/activities"
	"github.com/draftwright/draftwright/internal/blog"
)

func registerPersistStub(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.PersistInput) (activities.PersistResult, error) {
		return activities.PersistResult{
			MarkdownPath: "/out/" + in.RunID + ".md",
			ArchivePath:  "/out/" + in.RunID + ".zip",
		}, nil
	}, activity.RegisterOptions{Name: PersistActivity})
}

func TestBlogWorkflowClosedBookSkipsResearch(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	var researchCalls int32

	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.RouteInput) (activities.RouteResult, error) {
		return activities.RouteResult{
			NeedsResearch: false,
			Mode:          blog.ModeClosedBook,
			RecencyDays:   3650,
		}, nil
	}, activity.RegisterOptions{Name: RouteActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.ResearchInput) (activities.ResearchResult, error) {
		atomic.AddInt32(&researchCalls, 1)
		return activities.ResearchResult{}, nil
	}, activity.RegisterOptions{Name: ResearchActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.PlanInput) (activities.PlanResult, error) {
		assert.Empty(t, in.Evidence)
		return activities.PlanResult{Plan: blog.Plan{
			BlogTitle: "Go Concurrency",
			Audience:  "developers",
			Tone:      "direct",
			BlogKind:  blog.KindExplainer,
			Tasks:     []blog.Task{{ID: 1, Title: "Intro"}},
		}}, nil
	}, activity.RegisterOptions{Name: PlanActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.SectionInput) (activities.SectionResult, error) {
		return activities.SectionResult{TaskID: in.Task.ID, Markdown: "## Intro\n\nbody"}, nil
	}, activity.RegisterOptions{Name: WriteSectionActivity})
	registerPersistStub(env)

	env.ExecuteWorkflow(BlogWorkflow, BlogInput{Topic: "go concurrency", AsOf: "2026-01-29", RunID: "r1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Zero(t, atomic.LoadInt32(&researchCalls), "research must not run for closed_book")

	var out BlogResult
	require.NoError(t, env.GetWorkflowResult(&out))
	assert.Equal(t, blog.ModeClosedBook, out.Mode)
	assert.Equal(t, 1, out.SectionCount)
	assert.Equal(t, "/out/r1.md", out.MarkdownPath)
}

func TestBlogWorkflowOpenBookFullPath(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.RouteInput) (activities.RouteResult, error) {
		return activities.RouteResult{
			NeedsResearch: true,
			Mode:          blog.ModeOpenBook,
			Queries:       []string{"ai news this week"},
			RecencyDays:   7,
		}, nil
	}, activity.RegisterOptions{Name: RouteActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.ResearchInput) (activities.ResearchResult, error) {
		assert.Equal(t, 7, in.RecencyDays)
		return activities.ResearchResult{Evidence: []blog.EvidenceItem{
			{Title: "launch", URL: "https://example.com/a", PublishedAt: "2026-01-27"},
		}}, nil
	}, activity.RegisterOptions{Name: ResearchActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.PlanInput) (activities.PlanResult, error) {
		require.Len(t, in.Evidence, 1)
		return activities.PlanResult{Plan: blog.Plan{
			BlogTitle: "This Week in AI",
			Audience:  "developers",
			Tone:      "direct",
			BlogKind:  blog.KindNewsRoundup,
			Tasks: []blog.Task{
				{ID: 1, Title: "Releases"},
				{ID: 2, Title: "Funding"},
				{ID: 3, Title: "Outlook"},
			},
		}}, nil
	}, activity.RegisterOptions{Name: PlanActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.SectionInput) (activities.SectionResult, error) {
		require.Len(t, in.Evidence, 1, "every worker gets its own evidence copy")
		return activities.SectionResult{
			TaskID:   in.Task.ID,
			Markdown: fmt.Sprintf("## %s\n\nsection %d", in.Task.Title, in.Task.ID),
		}, nil
	}, activity.RegisterOptions{Name: WriteSectionActivity})
	registerPersistStub(env)

	env.ExecuteWorkflow(BlogWorkflow, BlogInput{Topic: "ai news", AsOf: "2026-01-29", RunID: "r2"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out BlogResult
	require.NoError(t, env.GetWorkflowResult(&out))
	assert.Equal(t, blog.KindNewsRoundup, out.BlogKind)
	assert.Equal(t, 3, out.SectionCount)
	assert.Equal(t,
		"# This Week in AI\n\n## Releases\n\nsection 1\n\n## Funding\n\nsection 2\n\n## Outlook\n\nsection 3\n",
		out.Final)
}

func TestBlogWorkflowFailsWhenAnySectionFails(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.RouteInput) (activities.RouteResult, error) {
		return activities.RouteResult{Mode: blog.ModeClosedBook, RecencyDays: 3650}, nil
	}, activity.RegisterOptions{Name: RouteActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.PlanInput) (activities.PlanResult, error) {
		return activities.PlanResult{Plan: blog.Plan{
			BlogTitle: "Doomed",
			Tasks:     []blog.Task{{ID: 1, Title: "ok"}, {ID: 2, Title: "broken"}},
		}}, nil
	}, activity.RegisterOptions{Name: PlanActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.SectionInput) (activities.SectionResult, error) {
		if in.Task.ID == 2 {
			return activities.SectionResult{}, errors.New("model produced empty markdown")
		}
		return activities.SectionResult{TaskID: in.Task.ID, Markdown: "## ok\n\nbody"}, nil
	}, activity.RegisterOptions{Name: WriteSectionActivity})

	var persisted int32
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.PersistInput) (activities.PersistResult, error) {
		atomic.AddInt32(&persisted, 1)
		return activities.PersistResult{}, nil
	}, activity.RegisterOptions{Name: PersistActivity})

	env.ExecuteWorkflow(BlogWorkflow, BlogInput{Topic: "t", AsOf: "2026-01-29"})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section for task 2 failed")
	assert.Zero(t, atomic.LoadInt32(&persisted), "no artifacts on a failed run")
}

func TestFailedActivitiesAreNotRetried(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	var sectionAttempts int32
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.RouteInput) (activities.RouteResult, error) {
		return activities.RouteResult{Mode: blog.ModeClosedBook, RecencyDays: 3650}, nil
	}, activity.RegisterOptions{Name: RouteActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.PlanInput) (activities.PlanResult, error) {
		return activities.PlanResult{Plan: blog.Plan{
			BlogTitle: "One Shot",
			Tasks:     []blog.Task{{ID: 1, Title: "only"}},
		}}, nil
	}, activity.RegisterOptions{Name: PlanActivity})
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.SectionInput) (activities.SectionResult, error) {
		atomic.AddInt32(&sectionAttempts, 1)
		return activities.SectionResult{}, errors.New("generation backend unavailable")
	}, activity.RegisterOptions{Name: WriteSectionActivity})

	env.ExecuteWorkflow(BlogWorkflow, BlogInput{Topic: "t", AsOf: "2026-01-29"})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	// Generation-backed work runs exactly once; failures propagate instead
	// of re-running the backend.
	assert.EqualValues(t, 1, atomic.LoadInt32(&sectionAttempts))
}

func TestFailedRouteIsNotRetried(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	var routeAttempts int32
	env.RegisterActivityWithOptions(func(ctx context.Context, in activities.RouteInput) (activities.RouteResult, error) {
		atomic.AddInt32(&routeAttempts, 1)
		return activities.RouteResult{}, errors.New("malformed structured output")
	}, activity.RegisterOptions{Name: RouteActivity})

	env.ExecuteWorkflow(BlogWorkflow, BlogInput{Topic: "t", AsOf: "2026-01-29"})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.EqualValues(t, 1, atomic.LoadInt32(&routeAttempts))
}

func TestBlogWorkflowRejectsEmptyTopic(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()

	env.ExecuteWorkflow(BlogWorkflow, BlogInput{})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
