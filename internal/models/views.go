package models

// OriginInfo describes the checklist line a task was extracted from.
type OriginInfo struct {
	ParentTaskID      int64  `json:"parent_task_id"`
	ParentTaskTitle   string `json:"parent_task_title"`
	ChecklistItemText string `json:"checklist_item_text"`
}

// TaskDetail is a task with its children, checklist, provenance and history.
type TaskDetail struct {
	Task
	Children       []Task          `json:"children"`
	Checklist      []ChecklistItem `json:"checklist"`
	Origin         *OriginInfo     `json:"origin"`
	CompletionLogs []CompletionLog `json:"completion_logs"`
}

// StaleTask is a task annotated by the staleness detector.
type StaleTask struct {
	Task
	StaleDays     int `json:"stale_days"`
	ThresholdDays int `json:"threshold_days"`
}

// CarryoverCandidate is an overdue task awaiting a carryover decision.
type CarryoverCandidate struct {
	Task
	OverdueDays int `json:"overdue_days"`
}

// ConvergenceChecklist holds the three independent convergence conditions.
type ConvergenceChecklist struct {
	OptionsWithinLimit  bool `json:"options_within_limit"`
	StructureSimplified bool `json:"structure_simplified"`
	ReversibleConfirmed bool `json:"reversible_confirmed"`
}

// ConvergenceInfo is the derived convergence view of a decision task.
type ConvergenceInfo struct {
	TaskID               int64                `json:"task_id"`
	ExplorationLimit     *int                 `json:"exploration_limit"`
	ExplorationUsed      int                  `json:"exploration_used"`
	ExplorationRemaining *int                 `json:"exploration_remaining"`
	Reversible           *bool                `json:"reversible"`
	DecisionCriteria     *string              `json:"decision_criteria"`
	IsConvergeable       bool                 `json:"is_convergeable"`
	Checklist            ConvergenceChecklist `json:"convergence_checklist"`
}
