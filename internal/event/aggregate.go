// Package event defines the domain read model assembled from raw sheet
// tabs and the heuristics that fold rows into it. The aggregate is
// rebuilt from the remote resource on every read; only the schema it
// was mapped with is ever cached.
package event

import "strings"

// Priority of a task, inferred from free text.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority infers a priority from free text. "urgent" and "high"
// map to high, "low" to low, anything else to medium.
func ParsePriority(text string) Priority {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "urgent"), strings.Contains(lower, "high"):
		return PriorityHigh
	case strings.Contains(lower, "low"):
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Status of a timeline item, inferred from free text.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus infers a status from free text.
func ParseStatus(text string) Status {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "complete"), strings.Contains(lower, "done"):
		return StatusCompleted
	case strings.Contains(lower, "progress"):
		return StatusInProgress
	default:
		return StatusPending
	}
}

// Budget summarizes event spending. Remaining is always recomputed from
// Total and Spent, never trusted from storage.
type Budget struct {
	Total     float64 `json:"total"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}

// Task is one row of a task-like tab.
type Task struct {
	Name       string   `json:"name"`
	DueDate    string   `json:"dueDate"`
	AssignedTo string   `json:"assignedTo"`
	Priority   Priority `json:"priority"`
}

// Tasks summarizes the task tabs: counts plus the next few open items.
type Tasks struct {
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Upcoming  []Task `json:"upcoming"`
}

// Vendor is one supplier/contact row.
type Vendor struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
}

// TimelineItem is one scheduled milestone.
type TimelineItem struct {
	Task       string `json:"task"`
	DueDate    string `json:"dueDate"`
	Status     Status `json:"status"`
	AssignedTo string `json:"assignedTo"`
}

// EventAggregate is the assembled domain view of one event resource.
// Date is opaque text: sheet authors write dates in every format
// imaginable, so it is stored and compared as-is.
type EventAggregate struct {
	Name     string         `json:"name"`
	Date     string         `json:"date"`
	Budget   Budget         `json:"budget"`
	Tasks    Tasks          `json:"tasks"`
	Vendors  []Vendor       `json:"vendors"`
	Timeline []TimelineItem `json:"timeline"`
}
