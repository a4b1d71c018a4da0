// Package models defines the domain types for raido.
package models

// TaskType classifies what kind of work a task represents.
type TaskType string

// Task types.
const (
	TaskTypeResearch  TaskType = "research"
	TaskTypeDecision  TaskType = "decision"
	TaskTypeExecution TaskType = "execution"
)

// AllTaskTypes lists every valid TaskType.
var AllTaskTypes = []TaskType{TaskTypeResearch, TaskTypeDecision, TaskTypeExecution}

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	for _, v := range AllTaskTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Priority is the urgency tier of a task. It also selects the staleness window.
type Priority string

// Priorities.
const (
	PriorityMust   Priority = "must"
	PriorityShould Priority = "should"
)

// AllPriorities lists every valid Priority.
var AllPriorities = []Priority{PriorityMust, PriorityShould}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityMust || p == PriorityShould
}

// Status is a task lifecycle state.
type Status string

// Task statuses. StatusDone is terminal.
const (
	StatusTodo               Status = "todo"
	StatusDoing              Status = "doing"
	StatusDone               Status = "done"
	StatusCarryoverCandidate Status = "carryover_candidate"
	StatusNeedsRedefine      Status = "needs_redefine"
	StatusSnoozed            Status = "snoozed"
)

// AllStatuses lists every valid Status.
var AllStatuses = []Status{
	StatusTodo,
	StatusDoing,
	StatusDone,
	StatusCarryoverCandidate,
	StatusNeedsRedefine,
	StatusSnoozed,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// toAny converts a typed enum list for use with validation.In.
func toAny[T any](vals []T) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
