// Package kanban implements the board engine: an ordered in-memory board,
// the drag session state machine that reorders it live, and the committer
// that persists the final placement and resynchronises on failure.
package kanban

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"taskboard/internal/model"
)

var (
	ErrNotLoaded      = errors.New("board not loaded")
	ErrTaskNotFound   = errors.New("task not found")
	ErrTargetNotFound = errors.New("drop target not found")
	ErrStaleLoad      = errors.New("load superseded by a newer load")
)

// Move is the placement sent to the backend when a drag completes.
type Move struct {
	TaskID   string `json:"taskId"`
	ColumnID string `json:"columnId"`
	Position int    `json:"position"`
}

// Backend is the remote collaborator that owns the authoritative board.
type Backend interface {
	FetchBoard(ctx context.Context, projectID string) (*model.Board, error)
	MoveTask(ctx context.Context, move Move) error
}

// Store holds the ordered board of one project. It is the single render
// source; state only leaves it through Snapshot.
type Store struct {
	mu        sync.Mutex
	backend   Backend
	projectID string
	board     *model.Board
	loading   bool
	loadSeq   uint64
	logger    *log.Logger
}

func NewStore(projectID string, backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		backend:   backend,
		projectID: projectID,
		logger:    logger,
	}
}

func (s *Store) ProjectID() string {
	return s.projectID
}

// Loading reports whether the most recent load is still in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Loaded reports whether any load has succeeded yet.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board != nil
}

// Load fetches the board and replaces the whole local state with it.
// Failures are logged and not retried; the previous board stays in place.
// Only the most recently started load is applied.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.loading = true
	s.mu.Unlock()

	board, err := s.backend.FetchBoard(ctx, s.projectID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		return ErrStaleLoad
	}
	s.loading = false
	if err != nil {
		s.logger.Printf("❌ failed to load board for project %s: %v", s.projectID, err)
		return fmt.Errorf("load board %s: %w", s.projectID, err)
	}
	if board == nil {
		board = &model.Board{}
	}
	board = board.Clone()
	board.ProjectID = s.projectID
	s.board = board
	return nil
}

// Replace swaps in a board wholesale.
func (s *Store) Replace(board *model.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = board.Clone()
}

// Snapshot returns a deep copy of the current board, or nil before the first load.
func (s *Store) Snapshot() *model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// FindTask returns a copy of the task with the given id.
func (s *Store) FindTask(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ti := s.locateTask(id)
	if ci < 0 {
		return model.Task{}, false
	}
	return s.board.Columns[ci].Tasks[ti].Clone(), true
}

// FindColumn returns a copy of the column with the given id.
func (s *Store) FindColumn(id string) (model.Column, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci := s.columnIndex(id)
	if ci < 0 {
		return model.Column{}, false
	}
	return s.board.Columns[ci].Clone(), true
}

// Placement returns the column and zero-based index the task currently occupies.
func (s *Store) Placement(taskID string) (Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ti := s.locateTask(taskID)
	if ci < 0 {
		return Move{}, false
	}
	return Move{TaskID: taskID, ColumnID: s.board.Columns[ci].ID, Position: ti}, true
}

// ApplyLiveMove places the active task at the target, which is either a task
// (insert at its index) or a column (append to it). Reports whether the
// board changed.
func (s *Store) ApplyLiveMove(activeID, targetID string) (bool, error) {
	if activeID == targetID {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return false, ErrNotLoaded
	}

	srcCol, srcIdx := s.locateTask(activeID)
	if srcCol < 0 {
		return false, ErrTaskNotFound
	}

	dstCol, dstIdx := s.locateTask(targetID)
	anchored := dstCol >= 0
	if !anchored {
		dstCol = s.columnIndex(targetID)
		if dstCol < 0 {
			return false, ErrTargetNotFound
		}
	}

	cols := s.board.Columns
	if srcCol != dstCol {
		task := cols[srcCol].Tasks[srcIdx]
		cols[srcCol].Tasks = removeAt(cols[srcCol].Tasks, srcIdx)
		task.ColumnID = cols[dstCol].ID
		if anchored {
			cols[dstCol].Tasks = insertAt(cols[dstCol].Tasks, dstIdx, task)
		} else {
			cols[dstCol].Tasks = append(cols[dstCol].Tasks, task)
		}
		renumber(&cols[srcCol])
		renumber(&cols[dstCol])
		return true, nil
	}

	// Hovering the task's own column moves it to the end.
	if !anchored {
		dstIdx = len(cols[srcCol].Tasks) - 1
	}
	if srcIdx == dstIdx {
		return false, nil
	}
	cols[srcCol].Tasks = moveWithin(cols[srcCol].Tasks, srcIdx, dstIdx)
	renumber(&cols[srcCol])
	return true, nil
}

func (s *Store) locateTask(id string) (int, int) {
	if s.board == nil {
		return -1, -1
	}
	for ci := range s.board.Columns {
		if ti := s.board.Columns[ci].IndexOf(id); ti >= 0 {
			return ci, ti
		}
	}
	return -1, -1
}

func (s *Store) columnIndex(id string) int {
	if s.board == nil {
		return -1
	}
	for ci := range s.board.Columns {
		if s.board.Columns[ci].ID == id {
			return ci
		}
	}
	return -1
}

func removeAt(tasks []model.Task, i int) []model.Task {
	out := make([]model.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func insertAt(tasks []model.Task, i int, task model.Task) []model.Task {
	if i > len(tasks) {
		i = len(tasks)
	}
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, task)
	return append(out, tasks[i:]...)
}

// moveWithin moves the element at from to index to, keeping the relative
// order of every other element.
func moveWithin(tasks []model.Task, from, to int) []model.Task {
	task := tasks[from]
	return insertAt(removeAt(tasks, from), to, task)
}

func renumber(c *model.Column) {
	for i := range c.Tasks {
		c.Tasks[i].Position = i
	}
}
