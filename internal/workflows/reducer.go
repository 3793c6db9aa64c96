package workflows

import (
	"fmt"
	"sort"
	"strings"

	"go.temporal.io/sdk/temporal"

	"github.com/draftwright/draftwright/internal/blog"
)

// Reduce assembles the final document from the completed sections. The
// output depends only on the (plan, sections) inputs, never on the order
// workers happened to finish in: sections are sorted by ascending task ID
// before assembly. Exactly one section per planned task is required.
func Reduce(plan *blog.Plan, sections []blog.Section) (string, error) {
	if plan == nil {
		return "", temporal.NewNonRetryableApplicationError(
			"reduce requires a plan", "invalid_state", nil)
	}

	byTask := make(map[int]blog.Section, len(sections))
	for _, s := range sections {
		if _, dup := byTask[s.TaskID]; dup {
			return "", fmt.Errorf("duplicate section for task %d", s.TaskID)
		}
		byTask[s.TaskID] = s
	}
	for _, task := range plan.Tasks {
		if _, ok := byTask[task.ID]; !ok {
			return "", fmt.Errorf("missing section for task %d (%s)", task.ID, task.Title)
		}
	}
	if len(sections) != len(plan.Tasks) {
		return "", fmt.Errorf("got %d sections for %d planned tasks", len(sections), len(plan.Tasks))
	}

	ordered := make([]blog.Section, len(sections))
	copy(ordered, sections)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].TaskID < ordered[j].TaskID })

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(strings.TrimSpace(plan.BlogTitle))
	for _, s := range ordered {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(s.Markdown))
	}
	return sb.String() + "\n", nil
}
