package client

import (
	"strings"
	"time"

	"taskboard/internal/model"
)

// boardResponse mirrors GET /projects/:id/tasks.
type boardResponse struct {
	Board *struct {
		Columns []columnJSON `json:"columns"`
	} `json:"board"`
}

type columnJSON struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Color    string     `json:"color"`
	Position int        `json:"position"`
	Tasks    []taskJSON `json:"tasks"`
}

type taskJSON struct {
	ID          string  `json:"id"`
	ColumnID    string  `json:"columnId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
	Position    int     `json:"position"`
	Assignments []struct {
		User model.User `json:"user"`
	} `json:"assignments"`
	Labels []struct {
		Label model.Label `json:"label"`
	} `json:"labels"`
	Subtasks []model.Subtask `json:"subtasks"`
	Count    struct {
		Comments int `json:"comments"`
	} `json:"_count"`
}

type moveRequest struct {
	ColumnID string `json:"columnId"`
	Position int    `json:"position"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r *boardResponse) toModel(projectID string) *model.Board {
	board := &model.Board{ProjectID: projectID, Columns: []model.Column{}}
	if r.Board == nil {
		return board
	}
	for _, c := range r.Board.Columns {
		col := model.Column{
			ID:       c.ID,
			Name:     c.Name,
			Color:    c.Color,
			Position: c.Position,
			Tasks:    make([]model.Task, 0, len(c.Tasks)),
		}
		for _, t := range c.Tasks {
			col.Tasks = append(col.Tasks, t.toModel(c.ID))
		}
		board.Columns = append(board.Columns, col)
	}
	return board
}

func (t *taskJSON) toModel(columnID string) model.Task {
	task := model.Task{
		ID:           t.ID,
		ColumnID:     t.ColumnID,
		Title:        t.Title,
		Priority:     model.Priority(strings.ToUpper(t.Priority)),
		Position:     t.Position,
		Subtasks:     t.Subtasks,
		CommentCount: t.Count.Comments,
	}
	if task.ColumnID == "" {
		task.ColumnID = columnID
	}
	if !task.Priority.Valid() {
		task.Priority = model.PriorityMedium
	}
	if t.Description != nil {
		task.Description = *t.Description
	}
	if t.DueDate != nil && *t.DueDate != "" {
		if due, err := parseDate(*t.DueDate); err == nil {
			task.DueDate = &due
		}
	}
	for _, a := range t.Assignments {
		task.Assignees = append(task.Assignees, a.User)
	}
	for _, l := range t.Labels {
		task.Labels = append(task.Labels, l.Label)
	}
	return task
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
