package activities

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/draftwright/draftwright/internal/blog"
	"github.com/draftwright/draftwright/internal/llm"
)

func TestFinalizePlanForcesNewsRoundup(t *testing.T) {
	p := &blog.Plan{BlogKind: blog.KindTutorial}
	finalizePlan(p, blog.ModeOpenBook)
	assert.Equal(t, blog.KindNewsRoundup, p.BlogKind)

	// Other modes leave the model's choice alone.
	p = &blog.Plan{BlogKind: blog.KindComparison}
	finalizePlan(p, blog.ModeHybrid)
	assert.Equal(t, blog.KindComparison, p.BlogKind)

	// Missing kind defaults to explainer.
	p = &blog.Plan{}
	finalizePlan(p, blog.ModeClosedBook)
	assert.Equal(t, blog.KindExplainer, p.BlogKind)
}

func TestPlanActivityForcesKindForOpenBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req llm.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "plan", req.OutputSchema)
		// Model ignores the instruction and assigns tutorial anyway.
		_ = json.NewEncoder(w).Encode(llm.GenerateResponse{
			Structured: json.RawMessage(`{
				"blog_title": "This Week in AI",
				"audience": "developers",
				"tone": "direct",
				"blog_kind": "tutorial",
				"tasks": [
					{"id": 1, "title": "Releases", "goal": "g", "bullets": ["a","b","c"], "target_words": 200},
					{"id": 2, "title": "Funding", "goal": "g", "bullets": ["a","b","c"], "target_words": 200}
				]
			}`),
		})
	}))
	defer srv.Close()

	a := newTestActivities(t, srv.URL)
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()
	env.RegisterActivity(a.Plan)

	val, err := env.ExecuteActivity(a.Plan, PlanInput{
		Topic: "AI news", Mode: blog.ModeOpenBook, AsOf: "2026-01-29", RecencyDays: 7,
	})
	require.NoError(t, err)

	var out PlanResult
	require.NoError(t, val.Get(&out))
	assert.Equal(t, blog.KindNewsRoundup, out.Plan.BlogKind)
	assert.Len(t, out.Plan.Tasks, 2)
}

func TestPlanActivityRejectsEmptyTaskList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(llm.GenerateResponse{
			Structured: json.RawMessage(`{"blog_title": "Empty", "audience": "a", "tone": "t", "tasks": []}`),
		})
	}))
	defer srv.Close()

	a := newTestActivities(t, srv.URL)
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()
	env.RegisterActivity(a.Plan)

	_, err := env.ExecuteActivity(a.Plan, PlanInput{Topic: "t", Mode: blog.ModeClosedBook, AsOf: "2026-01-29"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}
