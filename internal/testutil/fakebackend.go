// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"

	"taskboard/internal/kanban"
	"taskboard/internal/model"
)

// ErrNotFound is returned when a project, task or column is unknown.
var ErrNotFound = errors.New("not found")

// FakeBackend is an in-memory implementation of kanban.Backend for testing.
// Moves are applied to its own copy of the board, so a later FetchBoard
// reflects them the way the real backend would.
type FakeBackend struct {
	mu     sync.Mutex
	boards map[string]*model.Board

	// Error injection for testing
	FetchErr error
	MoveErr  error

	// Gate, when set, blocks MoveTask until it is closed.
	Gate chan struct{}

	FetchCalls int
	Moves      []kanban.Move
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{boards: make(map[string]*model.Board)}
}

// SetBoard installs the authoritative board for a project.
func (f *FakeBackend) SetBoard(projectID string, board *model.Board) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := board.Clone()
	b.ProjectID = projectID
	f.boards[projectID] = b
}

// Board returns a copy of the authoritative board.
func (f *FakeBackend) Board(projectID string) *model.Board {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.boards[projectID].Clone()
}

func (f *FakeBackend) SetFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchErr = err
}

func (f *FakeBackend) SetMoveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MoveErr = err
}

// MoveCount returns how many move requests were received.
func (f *FakeBackend) MoveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Moves)
}

// FetchBoard implements kanban.Backend.
func (f *FakeBackend) FetchBoard(ctx context.Context, projectID string) (*model.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchCalls++
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	b, ok := f.boards[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

// MoveTask implements kanban.Backend.
func (f *FakeBackend) MoveTask(ctx context.Context, move kanban.Move) error {
	f.mu.Lock()
	gate := f.Gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Moves = append(f.Moves, move)
	if f.MoveErr != nil {
		return f.MoveErr
	}

	for _, b := range f.boards {
		if applyMove(b, move) {
			return nil
		}
	}
	return ErrNotFound
}

func applyMove(b *model.Board, move kanban.Move) bool {
	src, idx := -1, -1
	dst := -1
	for ci := range b.Columns {
		if i := b.Columns[ci].IndexOf(move.TaskID); i >= 0 {
			src, idx = ci, i
		}
		if b.Columns[ci].ID == move.ColumnID {
			dst = ci
		}
	}
	if src < 0 || dst < 0 {
		return false
	}

	task := b.Columns[src].Tasks[idx]
	rest := append([]model.Task(nil), b.Columns[src].Tasks[:idx]...)
	b.Columns[src].Tasks = append(rest, b.Columns[src].Tasks[idx+1:]...)

	task.ColumnID = move.ColumnID
	pos := move.Position
	if pos < 0 || pos > len(b.Columns[dst].Tasks) {
		pos = len(b.Columns[dst].Tasks)
	}
	tasks := append([]model.Task(nil), b.Columns[dst].Tasks[:pos]...)
	tasks = append(tasks, task)
	b.Columns[dst].Tasks = append(tasks, b.Columns[dst].Tasks[pos:]...)

	for _, ci := range []int{src, dst} {
		for i := range b.Columns[ci].Tasks {
			b.Columns[ci].Tasks[i].Position = i
		}
	}
	return true
}

// NewBoard builds a board from column id → task ids, in order. Column names
// equal their ids.
func NewBoard(columns ...ColumnSpec) *model.Board {
	b := &model.Board{}
	for ci, spec := range columns {
		col := model.Column{ID: spec.ID, Name: spec.ID, Color: "#3b82f6", Position: ci, Tasks: []model.Task{}}
		for ti, id := range spec.Tasks {
			col.Tasks = append(col.Tasks, model.Task{
				ID:       id,
				ColumnID: spec.ID,
				Title:    "Task " + id,
				Priority: model.PriorityMedium,
				Position: ti,
			})
		}
		b.Columns = append(b.Columns, col)
	}
	return b
}

type ColumnSpec struct {
	ID    string
	Tasks []string
}

// Col is shorthand for a ColumnSpec.
func Col(id string, tasks ...string) ColumnSpec {
	return ColumnSpec{ID: id, Tasks: tasks}
}

// TaskIDs returns the task ids of a column in order.
func TaskIDs(b *model.Board, columnID string) []string {
	for _, c := range b.Columns {
		if c.ID == columnID {
			ids := make([]string, 0, len(c.Tasks))
			for _, t := range c.Tasks {
				ids = append(ids, t.ID)
			}
			return ids
		}
	}
	return nil
}
