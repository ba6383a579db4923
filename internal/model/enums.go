package model

type IssueType string

const (
	TypeTask    IssueType = "TASK"
	TypeBug     IssueType = "BUG"
	TypeSubtask IssueType = "SUBTASK"
)

func (t IssueType) Valid() bool {
	switch t {
	case TypeTask, TypeBug, TypeSubtask:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLowest  Priority = "LOWEST"
	PriorityLow     Priority = "LOW"
	PriorityMedium  Priority = "MEDIUM"
	PriorityHigh    Priority = "HIGH"
	PriorityHighest Priority = "HIGHEST"
)

// Rank orders priorities from LOWEST (1) to HIGHEST (5). Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLowest:
		return 1
	case PriorityLow:
		return 2
	case PriorityMedium:
		return 3
	case PriorityHigh:
		return 4
	case PriorityHighest:
		return 5
	}
	return 0
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusInReview   Status = "IN_REVIEW"
	StatusDone       Status = "DONE"
)

// Statuses lists every status in board column order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusInReview, StatusDone}

// Rank orders statuses from TODO (1) to DONE (4). Unknown values rank 0.
func (s Status) Rank() int {
	switch s {
	case StatusTodo:
		return 1
	case StatusInProgress:
		return 2
	case StatusInReview:
		return 3
	case StatusDone:
		return 4
	}
	return 0
}

func (s Status) Valid() bool { return s.Rank() > 0 }
