package workflows

import (
	"go.temporal.io/sdk/temporal"

	"github.com/draftwright/draftwright/internal/activities"
	"github.com/draftwright/draftwright/internal/blog"
)

// BuildSectionUnits expands the plan into one self-contained work unit per
// task. Every unit carries its own copy of the shared context so workers
// never reach into each other's inputs. A missing plan at this point is a
// pipeline bug, not a transient fault, so the error is non-retryable.
func BuildSectionUnits(state *BlogState) ([]activities.SectionInput, error) {
	if state.Plan == nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"section fan-out requires a plan", "invalid_state", nil)
	}

	units := make([]activities.SectionInput, 0, len(state.Plan.Tasks))
	for _, task := range state.Plan.Tasks {
		units = append(units, activities.SectionInput{
			Task:        task,
			Topic:       state.Topic,
			Mode:        state.Mode,
			AsOf:        state.AsOf,
			RecencyDays: state.RecencyDays,
			Plan:        *state.Plan,
			Evidence:    copyEvidence(state.Evidence),
		})
	}
	return units, nil
}

func copyEvidence(src []blog.EvidenceItem) []blog.EvidenceItem {
	if len(src) == 0 {
		return nil
	}
	dst := make([]blog.EvidenceItem, len(src))
	copy(dst, src)
	return dst
}
