package model

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

type Task struct {
	ID           string     `json:"id"`
	ColumnID     string     `json:"columnId"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Position     int        `json:"position"`
	Assignees    []User     `json:"assignees"`
	Labels       []Label    `json:"labels"`
	Subtasks     []Subtask  `json:"subtasks"`
	CommentCount int        `json:"commentCount"`
}

// CompletedSubtasks counts subtasks with the completion flag set.
func (t *Task) CompletedSubtasks() int {
	n := 0
	for _, s := range t.Subtasks {
		if s.IsCompleted {
			n++
		}
	}
	return n
}

func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	if t.Assignees != nil {
		out.Assignees = append([]User(nil), t.Assignees...)
	}
	if t.Labels != nil {
		out.Labels = append([]Label(nil), t.Labels...)
	}
	if t.Subtasks != nil {
		out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return out
}
