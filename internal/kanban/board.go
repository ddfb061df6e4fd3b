package kanban

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"sync"
	"time"

	"taskboard/internal/model"
)

// DefaultActivationDistance is how far, in pixels, the pointer must travel
// after a press before the press becomes a drag.
const DefaultActivationDistance = 8.0

var (
	ErrReadOnly        = errors.New("board is read-only")
	ErrNotDragging     = errors.New("no drag in progress")
	ErrAlreadyDragging = errors.New("a drag is already in progress")
	ErrNotPressed      = errors.New("no task is pressed")
)

type DragState int

const (
	StateIdle DragState = iota
	StatePressed
	StateDragging
	StateCommitting
)

func (s DragState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePressed:
		return "pressed"
	case StateDragging:
		return "dragging"
	case StateCommitting:
		return "committing"
	}
	return fmt.Sprintf("DragState(%d)", int(s))
}

type Point struct {
	X, Y float64
}

// DragSession is the ephemeral state of one in-progress drag.
type DragSession struct {
	ActiveID       string    `json:"activeId"`
	OriginColumnID string    `json:"originColumnId"`
	OverID         string    `json:"overId,omitempty"`
	StartedAt      time.Time `json:"startedAt"`

	before *model.Board
}

type options struct {
	activationDistance float64
	readOnly           bool
	restoreOnCancel    bool
	journal            Journal
	logger             *log.Logger
}

type Option func(*options)

func WithActivationDistance(d float64) Option {
	return func(o *options) { o.activationDistance = d }
}

// WithReadOnly rejects every drag; clicks still work.
func WithReadOnly() Option {
	return func(o *options) { o.readOnly = true }
}

// WithRestoreOnCancel keeps a pre-drag snapshot and restores it when a drag
// is cancelled or dropped outside any target.
func WithRestoreOnCancel() Option {
	return func(o *options) { o.restoreOnCancel = true }
}

func WithJournal(j Journal) Option {
	return func(o *options) { o.journal = j }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Board is one mounted kanban board: the store, the drag state machine over
// it and the committer. Every event is serialised by mu, which plays the
// role of the UI event loop.
type Board struct {
	mu        sync.Mutex
	store     *Store
	committer *Committer
	opts      options

	state   DragState
	session *DragSession
	pressID string
	pressAt Point

	listeners []func(*model.Board)
	onClick   []func(model.Task)
	pending   sync.WaitGroup
}

func NewBoard(projectID string, backend Backend, opts ...Option) *Board {
	o := options{
		activationDistance: DefaultActivationDistance,
		logger:             log.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Board{opts: o}
	b.store = NewStore(projectID, backend, o.logger)
	b.committer = NewCommitter(backend, b.Load, o.journal, o.logger)
	return b
}

func (b *Board) ProjectID() string {
	return b.store.ProjectID()
}

func (b *Board) ReadOnly() bool {
	return b.opts.readOnly
}

// OnChange registers a listener that receives a snapshot after every load
// and every applied mutation.
func (b *Board) OnChange(fn func(*model.Board)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// OnTaskClick registers a listener for task clicks.
func (b *Board) OnTaskClick(fn func(model.Task)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onClick = append(b.onClick, fn)
}

// Load replaces the board with the backend's copy.
func (b *Board) Load(ctx context.Context) error {
	err := b.store.Load(ctx)
	if errors.Is(err, ErrStaleLoad) {
		return nil
	}
	if err != nil {
		return err
	}
	b.notify()
	return nil
}

// Refresh is the "board changed externally" trigger.
func (b *Board) Refresh(ctx context.Context) error {
	return b.Load(ctx)
}

func (b *Board) Loading() bool {
	return b.store.Loading()
}

func (b *Board) Snapshot() *model.Board {
	return b.store.Snapshot()
}

func (b *Board) FindTask(id string) (model.Task, bool) {
	return b.store.FindTask(id)
}

func (b *Board) FindColumn(id string) (model.Column, bool) {
	return b.store.FindColumn(id)
}

func (b *Board) State() DragState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Session returns a copy of the active drag session.
func (b *Board) Session() (DragSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return DragSession{}, false
	}
	s := *b.session
	s.before = nil
	return s, true
}

// Press records a pointer-down on a task. The press becomes a drag once the
// pointer moves past the activation distance.
func (b *Board) Press(taskID string, at Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateIdle {
		return ErrAlreadyDragging
	}
	if _, ok := b.store.FindTask(taskID); !ok {
		return ErrTaskNotFound
	}
	b.state = StatePressed
	b.pressID = taskID
	b.pressAt = at
	return nil
}

// Move reports a pointer move while pressed and returns true when the press
// turned into a drag.
func (b *Board) Move(at Point) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StatePressed:
	case StateDragging:
		return false, nil
	default:
		return false, ErrNotPressed
	}

	if math.Hypot(at.X-b.pressAt.X, at.Y-b.pressAt.Y) < b.opts.activationDistance {
		return false, nil
	}
	if err := b.startLocked(b.pressID); err != nil {
		b.state = StateIdle
		b.pressID = ""
		return false, err
	}
	return true, nil
}

// Release is a pointer-up. Before activation it is a click on the pressed
// task; during a drag it drops on the last hovered target.
func (b *Board) Release(ctx context.Context) (*Commit, error) {
	b.mu.Lock()
	switch b.state {
	case StatePressed:
		id := b.pressID
		b.state = StateIdle
		b.pressID = ""
		b.mu.Unlock()
		_, err := b.TaskClicked(id)
		return nil, err
	case StateDragging:
		over := b.session.OverID
		b.mu.Unlock()
		return b.Drop(ctx, over)
	}
	b.mu.Unlock()
	return nil, ErrNotPressed
}

// TaskClicked notifies click listeners with the full task record.
func (b *Board) TaskClicked(id string) (model.Task, error) {
	task, ok := b.store.FindTask(id)
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	b.mu.Lock()
	fns := slices.Clone(b.onClick)
	b.mu.Unlock()
	for _, fn := range fns {
		fn(task)
	}
	return task, nil
}

// DragStart begins a drag of the given task, skipping the activation check.
func (b *Board) DragStart(taskID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateIdle && b.state != StatePressed {
		return ErrAlreadyDragging
	}
	if err := b.startLocked(taskID); err != nil {
		b.state = StateIdle
		b.pressID = ""
		return err
	}
	return nil
}

func (b *Board) startLocked(taskID string) error {
	if b.opts.readOnly {
		return ErrReadOnly
	}
	task, ok := b.store.FindTask(taskID)
	if !ok {
		return ErrTaskNotFound
	}

	b.session = &DragSession{
		ActiveID:       taskID,
		OriginColumnID: task.ColumnID,
		StartedAt:      time.Now(),
	}
	if b.opts.restoreOnCancel {
		b.session.before = b.store.Snapshot()
	}
	b.state = StateDragging
	b.pressID = ""
	return nil
}

// DragOver applies the live reorder for a hover over a task or a column.
// An empty target clears the hover without touching the board.
func (b *Board) DragOver(targetID string) (bool, error) {
	b.mu.Lock()
	if b.state != StateDragging {
		b.mu.Unlock()
		return false, ErrNotDragging
	}
	b.session.OverID = targetID
	if targetID == "" {
		b.mu.Unlock()
		return false, nil
	}
	changed, err := b.store.ApplyLiveMove(b.session.ActiveID, targetID)
	b.mu.Unlock()

	if err != nil {
		return false, err
	}
	if changed {
		b.notify()
	}
	return changed, nil
}

// Drop ends the drag. An empty target means the pointer was released outside
// every droppable area: no request is sent. Otherwise the task's current
// placement is committed in the background.
func (b *Board) Drop(ctx context.Context, targetID string) (*Commit, error) {
	b.mu.Lock()
	if b.state != StateDragging {
		b.mu.Unlock()
		return nil, ErrNotDragging
	}
	if targetID == "" {
		restored := b.endLocked()
		b.mu.Unlock()
		if restored {
			b.notify()
		}
		return nil, nil
	}

	session := b.session
	changed := false
	if targetID != session.OverID {
		var err error
		changed, err = b.store.ApplyLiveMove(session.ActiveID, targetID)
		if err != nil && !errors.Is(err, ErrTargetNotFound) {
			b.resetLocked()
			b.mu.Unlock()
			return nil, err
		}
	}

	b.state = StateCommitting
	move, ok := b.store.Placement(session.ActiveID)
	b.resetLocked()
	if !ok {
		b.mu.Unlock()
		return nil, ErrTaskNotFound
	}

	b.pending.Add(1)
	commit := b.committer.Start(context.WithoutCancel(ctx), move)
	go func() {
		<-commit.Done()
		b.pending.Done()
	}()
	b.mu.Unlock()

	if changed {
		b.notify()
	}
	return commit, nil
}

// Cancel abandons the drag without committing. Live changes stay on the
// board unless the board restores on cancel.
func (b *Board) Cancel() error {
	b.mu.Lock()
	switch b.state {
	case StatePressed:
		b.resetLocked()
		b.mu.Unlock()
		return nil
	case StateDragging:
		restored := b.endLocked()
		b.mu.Unlock()
		if restored {
			b.notify()
		}
		return nil
	}
	b.mu.Unlock()
	return ErrNotDragging
}

// Wait blocks until every in-flight commit has resolved.
func (b *Board) Wait() {
	b.pending.Wait()
}

func (b *Board) endLocked() bool {
	restored := false
	if b.session != nil && b.session.before != nil {
		b.store.Replace(b.session.before)
		restored = true
	}
	b.resetLocked()
	return restored
}

func (b *Board) resetLocked() {
	b.state = StateIdle
	b.session = nil
	b.pressID = ""
}

func (b *Board) notify() {
	b.mu.Lock()
	fns := slices.Clone(b.listeners)
	b.mu.Unlock()
	if len(fns) == 0 {
		return
	}
	snap := b.store.Snapshot()
	for _, fn := range fns {
		fn(snap.Clone())
	}
}
