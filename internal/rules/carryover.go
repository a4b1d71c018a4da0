package rules

import (
	"sort"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Action is a carryover remediation.
type Action string

// Carryover actions.
const (
	ActionToday         Action = "today"
	ActionPlus2Days     Action = "plus_2d"
	ActionPlus7Days     Action = "plus_7d"
	ActionNeedsRedefine Action = "needs_redefine"
)

// AllActions lists every valid carryover action.
var AllActions = []Action{ActionToday, ActionPlus2Days, ActionPlus7Days, ActionNeedsRedefine}

// ParseAction validates a carryover action literal.
func ParseAction(s string) (Action, error) {
	for _, a := range AllActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", apperr.Validation("unknown carryover action %q", s)
}

// actionable statuses are the ones an overdue task can be carried over from.
// needs_redefine is the outcome of the needs_redefine action, so counting it would
// keep the task in the set after it was handled. snoozed is a deliberate "not now"
// from the user and is not nagged about either.
func actionable(s models.Status) bool {
	switch s {
	case models.StatusTodo, models.StatusDoing, models.StatusCarryoverCandidate:
		return true
	}
	return false
}

// IsCarryoverCandidate reports whether t is overdue relative to today and still actionable.
func IsCarryoverCandidate(t models.Task, today models.Date) bool {
	return t.DueDate != nil && t.DueDate.Before(today) && actionable(t.Status)
}

// OverdueDays is the whole number of days between due and today.
func OverdueDays(due, today models.Date) int {
	return today.DaysSince(due)
}

// CarryoverCandidates filters tasks down to carryover candidates, most overdue first.
func CarryoverCandidates(tasks []models.Task, today models.Date) []models.CarryoverCandidate {
	out := []models.CarryoverCandidate{}
	for _, t := range tasks {
		if !IsCarryoverCandidate(t, today) {
			continue
		}
		out = append(out, models.CarryoverCandidate{Task: t, OverdueDays: OverdueDays(*t.DueDate, today)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OverdueDays != out[j].OverdueDays {
			return out[i].OverdueDays > out[j].OverdueDays
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ApplyCarryover returns t after action a. New due dates depend only on today, so
// repeating an action never drifts the schedule.
func ApplyCarryover(t models.Task, a Action, today models.Date) (models.Task, error) {
	var due models.Date
	switch a {
	case ActionToday:
		due = today
	case ActionPlus2Days:
		due = today.AddDays(2)
	case ActionPlus7Days:
		due = today.AddDays(7)
	case ActionNeedsRedefine:
		t.Status = models.StatusNeedsRedefine
		return t, nil
	default:
		return t, apperr.Validation("unknown carryover action %q", a)
	}
	t.DueDate = &due
	return t, nil
}
