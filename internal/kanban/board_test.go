package kanban_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"taskboard/internal/kanban"
	"taskboard/internal/model"
	"taskboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoard(t *testing.T, board *model.Board, opts ...kanban.Option) (*kanban.Board, *testutil.FakeBackend) {
	t.Helper()
	backend := testutil.NewFakeBackend()
	backend.SetBoard("p1", board)
	b := kanban.NewBoard("p1", backend, opts...)
	require.NoError(t, b.Load(context.Background()))
	return b, backend
}

type recordingJournal struct {
	mu       sync.Mutex
	outcomes []string
}

func (j *recordingJournal) Record(ctx context.Context, move kanban.Move, outcome string, cause error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outcomes = append(j.outcomes, outcome)
}

func (j *recordingJournal) Outcomes() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.outcomes...)
}

func TestBoard_DragLifecycle(t *testing.T) {
	// Arrange
	b, backend := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A", "B"),
		testutil.Col("c2", "X", "Y"),
	))

	// Act
	require.NoError(t, b.DragStart("A"))
	assert.Equal(t, kanban.StateDragging, b.State())

	changed, err := b.DragOver("Y")
	require.NoError(t, err)
	assert.True(t, changed)

	commit, err := b.Drop(context.Background(), "Y")
	require.NoError(t, err)
	require.NotNil(t, commit)

	// Assert
	assert.Equal(t, kanban.StateIdle, b.State())
	require.NoError(t, commit.Wait())
	assert.Equal(t, kanban.Move{TaskID: "A", ColumnID: "c2", Position: 1}, commit.Move)
	assert.Equal(t, []kanban.Move{{TaskID: "A", ColumnID: "c2", Position: 1}}, backend.Moves)
	assert.Equal(t, testutil.TaskIDs(backend.Board("p1"), "c2"), testutil.TaskIDs(b.Snapshot(), "c2"))
}

func TestBoard_LiveReorderIsVisibleDuringDrag(t *testing.T) {
	b, backend := newBoard(t, testutil.NewBoard(testutil.Col("c1", "A", "B", "C", "D")))

	require.NoError(t, b.DragStart("A"))
	_, err := b.DragOver("C")
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A", "D"}, testutil.TaskIDs(b.Snapshot(), "c1"))
	assert.Equal(t, 0, backend.MoveCount())

	session, ok := b.Session()
	require.True(t, ok)
	assert.Equal(t, "A", session.ActiveID)
	assert.Equal(t, "c1", session.OriginColumnID)
	assert.Equal(t, "C", session.OverID)
}

func TestBoard_DropOnEmptyColumn(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A", "B"),
		testutil.Col("empty"),
	))

	require.NoError(t, b.DragStart("B"))
	_, err := b.DragOver("empty")
	require.NoError(t, err)
	commit, err := b.Drop(context.Background(), "empty")
	require.NoError(t, err)

	require.NoError(t, commit.Wait())
	assert.Equal(t, kanban.Move{TaskID: "B", ColumnID: "empty", Position: 0}, commit.Move)
	assert.Equal(t, []string{"B"}, testutil.TaskIDs(b.Snapshot(), "empty"))
}

func TestBoard_DropAppliesTargetNotYetHovered(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A"),
		testutil.Col("c2", "X"),
	))

	require.NoError(t, b.DragStart("A"))
	commit, err := b.Drop(context.Background(), "c2")
	require.NoError(t, err)

	require.NoError(t, commit.Wait())
	assert.Equal(t, kanban.Move{TaskID: "A", ColumnID: "c2", Position: 1}, commit.Move)
}

func TestBoard_SelfDragIsNoOp(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A", "B"),
		testutil.Col("c2", "X"),
	))
	before := b.Snapshot()

	require.NoError(t, b.DragStart("A"))
	changed, err := b.DragOver("A")

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, b.Snapshot())
}

func TestBoard_MoveFailureResyncs(t *testing.T) {
	// Arrange
	journal := &recordingJournal{}
	b, backend := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A", "B"),
		testutil.Col("c2", "X"),
	), kanban.WithJournal(journal))
	backend.SetMoveErr(errors.New("conflict"))

	// Act
	require.NoError(t, b.DragStart("A"))
	_, err := b.DragOver("X")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "X"}, testutil.TaskIDs(b.Snapshot(), "c2"))

	commit, err := b.Drop(context.Background(), "X")
	require.NoError(t, err)
	commitErr := commit.Wait()

	// Assert
	assert.EqualError(t, commitErr, "conflict")
	assert.Equal(t, backend.Board("p1"), b.Snapshot())
	assert.Equal(t, []string{"A", "B"}, testutil.TaskIDs(b.Snapshot(), "c1"))
	assert.Equal(t, []string{model.OutcomeFailed, model.OutcomeResynced}, journal.Outcomes())
	assert.Equal(t, 2, backend.FetchCalls)
}

func TestBoard_MoveAndResyncFailureKeepsOptimisticBoard(t *testing.T) {
	journal := &recordingJournal{}
	b, backend := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A"),
		testutil.Col("c2"),
	), kanban.WithJournal(journal))
	backend.SetMoveErr(errors.New("timeout"))
	backend.SetFetchErr(errors.New("timeout"))

	require.NoError(t, b.DragStart("A"))
	commit, err := b.Drop(context.Background(), "c2")
	require.NoError(t, err)

	assert.Error(t, commit.Wait())
	assert.False(t, b.Loading())
	assert.Equal(t, []string{"A"}, testutil.TaskIDs(b.Snapshot(), "c2"))
	assert.Equal(t, []string{model.OutcomeFailed, model.OutcomeResyncFailed}, journal.Outcomes())
}

func TestBoard_CommitIsIdempotent(t *testing.T) {
	b, backend := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A", "B", "C"),
		testutil.Col("c2"),
	))

	require.NoError(t, b.DragStart("A"))
	_, err := b.DragOver("C")
	require.NoError(t, err)
	commit, err := b.Drop(context.Background(), "C")
	require.NoError(t, err)
	require.NoError(t, commit.Wait())
	require.NoError(t, b.Refresh(context.Background()))
	first := b.Snapshot()

	// Same final placement again, no intervening change.
	require.NoError(t, backend.MoveTask(context.Background(), commit.Move))
	require.NoError(t, b.Refresh(context.Background()))

	assert.Equal(t, first, b.Snapshot())
	assert.Equal(t, []string{"B", "C", "A"}, testutil.TaskIDs(b.Snapshot(), "c1"))
}

func TestBoard_DropOutsideLeavesLiveChanges(t *testing.T) {
	b, backend := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A", "B"),
		testutil.Col("c2"),
	))

	require.NoError(t, b.DragStart("A"))
	_, err := b.DragOver("c2")
	require.NoError(t, err)
	commit, err := b.Drop(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, commit)
	assert.Equal(t, kanban.StateIdle, b.State())
	assert.Equal(t, 0, backend.MoveCount())
	assert.Equal(t, []string{"A"}, testutil.TaskIDs(b.Snapshot(), "c2"))
}

func TestBoard_RestoreOnCancel(t *testing.T) {
	b, backend := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A", "B"),
		testutil.Col("c2"),
	), kanban.WithRestoreOnCancel())
	before := b.Snapshot()

	require.NoError(t, b.DragStart("A"))
	_, err := b.DragOver("c2")
	require.NoError(t, err)
	require.NoError(t, b.Cancel())

	assert.Equal(t, before, b.Snapshot())
	assert.Equal(t, 0, backend.MoveCount())

	require.NoError(t, b.DragStart("B"))
	_, err = b.DragOver("c2")
	require.NoError(t, err)
	commit, err := b.Drop(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, commit)
	assert.Equal(t, before, b.Snapshot())
}

func TestBoard_ActivationDistance(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(testutil.Col("c1", "A", "B")))

	require.NoError(t, b.Press("A", kanban.Point{X: 10, Y: 10}))
	assert.Equal(t, kanban.StatePressed, b.State())

	activated, err := b.Move(kanban.Point{X: 14, Y: 14})
	require.NoError(t, err)
	assert.False(t, activated)
	assert.Equal(t, kanban.StatePressed, b.State())

	activated, err = b.Move(kanban.Point{X: 10, Y: 18})
	require.NoError(t, err)
	assert.True(t, activated)
	assert.Equal(t, kanban.StateDragging, b.State())
}

func TestBoard_ReleaseBeforeActivationIsClick(t *testing.T) {
	b, backend := newBoard(t, testutil.NewBoard(testutil.Col("c1", "A", "B")))
	var clicked []string
	b.OnTaskClick(func(task model.Task) { clicked = append(clicked, task.ID) })

	require.NoError(t, b.Press("B", kanban.Point{}))
	_, err := b.Move(kanban.Point{X: 3})
	require.NoError(t, err)
	commit, err := b.Release(context.Background())

	require.NoError(t, err)
	assert.Nil(t, commit)
	assert.Equal(t, []string{"B"}, clicked)
	assert.Equal(t, kanban.StateIdle, b.State())
	assert.Equal(t, 0, backend.MoveCount())
}

func TestBoard_ReleaseDuringDragDropsOnHoverTarget(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(testutil.Col("c1", "A", "B", "C")))

	require.NoError(t, b.Press("A", kanban.Point{}))
	_, err := b.Move(kanban.Point{Y: 40})
	require.NoError(t, err)
	_, err = b.DragOver("B")
	require.NoError(t, err)
	commit, err := b.Release(context.Background())

	require.NoError(t, err)
	require.NotNil(t, commit)
	require.NoError(t, commit.Wait())
	assert.Equal(t, kanban.Move{TaskID: "A", ColumnID: "c1", Position: 1}, commit.Move)
}

func TestBoard_ReadOnlyRejectsDrag(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(testutil.Col("c1", "A")), kanban.WithReadOnly())

	assert.ErrorIs(t, b.DragStart("A"), kanban.ErrReadOnly)
	assert.Equal(t, kanban.StateIdle, b.State())

	require.NoError(t, b.Press("A", kanban.Point{}))
	_, err := b.Move(kanban.Point{X: 100})
	assert.ErrorIs(t, err, kanban.ErrReadOnly)
	assert.Equal(t, kanban.StateIdle, b.State())
}

func TestBoard_StateErrors(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(testutil.Col("c1", "A", "B")))

	_, err := b.DragOver("A")
	assert.ErrorIs(t, err, kanban.ErrNotDragging)
	_, err = b.Drop(context.Background(), "A")
	assert.ErrorIs(t, err, kanban.ErrNotDragging)
	assert.ErrorIs(t, b.Cancel(), kanban.ErrNotDragging)
	assert.ErrorIs(t, b.DragStart("zzz"), kanban.ErrTaskNotFound)

	require.NoError(t, b.DragStart("A"))
	assert.ErrorIs(t, b.DragStart("B"), kanban.ErrAlreadyDragging)
	assert.ErrorIs(t, b.Press("B", kanban.Point{}), kanban.ErrAlreadyDragging)

	_, err = b.DragOver("nowhere")
	assert.ErrorIs(t, err, kanban.ErrTargetNotFound)
	assert.Equal(t, kanban.StateDragging, b.State())
}

func TestBoard_SecondDragWhileCommitPending(t *testing.T) {
	b, backend := newBoard(t, testutil.NewBoard(
		testutil.Col("c1", "A", "B"),
		testutil.Col("c2"),
	))
	backend.Gate = make(chan struct{})

	require.NoError(t, b.DragStart("A"))
	first, err := b.Drop(context.Background(), "c2")
	require.NoError(t, err)

	require.NoError(t, b.DragStart("B"))
	second, err := b.Drop(context.Background(), "c2")
	require.NoError(t, err)

	close(backend.Gate)
	b.Wait()
	assert.NoError(t, first.Wait())
	assert.NoError(t, second.Wait())
	assert.Equal(t, 2, backend.MoveCount())
	assert.Equal(t, []string{"A", "B"}, testutil.TaskIDs(backend.Board("p1"), "c2"))
}

func TestBoard_ListenersSeeEveryChange(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(testutil.Col("c1", "A", "B", "C")))
	var mu sync.Mutex
	var seen [][]string
	b.OnChange(func(board *model.Board) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, testutil.TaskIDs(board, "c1"))
	})

	require.NoError(t, b.DragStart("A"))
	_, err := b.DragOver("B")
	require.NoError(t, err)
	_, err = b.DragOver("C")
	require.NoError(t, err)
	require.NoError(t, b.Refresh(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]string{
		{"B", "A", "C"},
		{"B", "C", "A"},
		{"A", "B", "C"},
	}, seen)
}

func TestBoard_TaskClicked(t *testing.T) {
	b, _ := newBoard(t, testutil.NewBoard(testutil.Col("c1", "A")))

	task, err := b.TaskClicked("A")
	require.NoError(t, err)
	assert.Equal(t, "Task A", task.Title)

	_, err = b.TaskClicked("missing")
	assert.ErrorIs(t, err, kanban.ErrTaskNotFound)
}

func TestDragState_String(t *testing.T) {
	assert.Equal(t, "idle", kanban.StateIdle.String())
	assert.Equal(t, "dragging", kanban.StateDragging.String())
	assert.Equal(t, "DragState(9)", kanban.DragState(9).String())
}

func TestBoard_StaleLoadIsNotAnError(t *testing.T) {
	// Arrange
	backend := newPendingFetchBackend()
	board := kanban.NewBoard("p1", backend)
	var notified []string
	board.OnChange(func(b *model.Board) {
		notified = append(notified, testutil.TaskIDs(b, "todo")...)
	})

	older := make(chan error, 1)
	go func() { older <- board.Load(context.Background()) }()
	olderReply := <-backend.calls

	newer := make(chan error, 1)
	go func() { newer <- board.Refresh(context.Background()) }()
	newerReply := <-backend.calls

	// Act
	newerReply <- testutil.NewBoard(testutil.Col("todo", "NEW"))
	require.NoError(t, <-newer)
	olderReply <- testutil.NewBoard(testutil.Col("todo", "OLD"))

	// Assert
	assert.NoError(t, <-older)
	assert.Equal(t, []string{"NEW"}, notified)
	assert.Equal(t, []string{"NEW"}, testutil.TaskIDs(board.Snapshot(), "todo"))
}
