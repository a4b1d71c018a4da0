package rules

import (
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// DefaultStructureMaxChildren is the child ceiling used when no policy is configured.
const DefaultStructureMaxChildren = 3

// StructurePolicy decides whether a decision task's structure is simple enough to converge.
type StructurePolicy interface {
	StructureSimplified(task models.Task, childCount int) bool
}

// MaxChildren is a StructurePolicy that allows at most n children.
type MaxChildren int

// StructureSimplified implements StructurePolicy.
func (m MaxChildren) StructureSimplified(_ models.Task, childCount int) bool {
	return childCount <= int(m)
}

// StructurePolicyFunc adapts a function to StructurePolicy.
type StructurePolicyFunc func(task models.Task, childCount int) bool

// StructureSimplified implements StructurePolicy.
func (f StructurePolicyFunc) StructureSimplified(task models.Task, childCount int) bool {
	return f(task, childCount)
}

// ReversibleConfirmed reports whether a decision may proceed: it is either reversible
// or documents the criteria it was made on.
func ReversibleConfirmed(t models.Task) bool {
	if t.Reversible != nil && *t.Reversible {
		return true
	}
	return t.DecisionCriteria != nil && strings.TrimSpace(*t.DecisionCriteria) != ""
}

// EvaluateConvergence builds the convergence view of decision task t, whose child
// tasks count as explored options.
func EvaluateConvergence(t models.Task, childCount int, policy StructurePolicy) (models.ConvergenceInfo, error) {
	if !t.IsDecision() {
		return models.ConvergenceInfo{}, apperr.Validation("task %d is a %s task; convergence applies to decision tasks", t.ID, t.TaskType)
	}
	if policy == nil {
		policy = MaxChildren(DefaultStructureMaxChildren)
	}

	info := models.ConvergenceInfo{
		TaskID:           t.ID,
		ExplorationLimit: t.ExplorationLimit,
		ExplorationUsed:  childCount,
		Reversible:       t.Reversible,
		DecisionCriteria: t.DecisionCriteria,
	}

	info.Checklist.OptionsWithinLimit = true
	if t.ExplorationLimit != nil {
		remaining := *t.ExplorationLimit - childCount
		info.ExplorationRemaining = &remaining
		info.Checklist.OptionsWithinLimit = childCount <= *t.ExplorationLimit
	}
	info.Checklist.StructureSimplified = policy.StructureSimplified(t, childCount)
	info.Checklist.ReversibleConfirmed = ReversibleConfirmed(t)

	info.IsConvergeable = info.Checklist.OptionsWithinLimit &&
		info.Checklist.StructureSimplified &&
		info.Checklist.ReversibleConfirmed
	return info, nil
}
