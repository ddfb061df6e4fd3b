package kanban

import (
	"context"
	"log"

	"taskboard/internal/model"
)

// Journal receives the outcome of every commit attempt.
type Journal interface {
	Record(ctx context.Context, move Move, outcome string, cause error)
}

// Commit tracks one in-flight move request.
type Commit struct {
	Move Move
	done chan struct{}
	err  error
}

// Done is closed once the backend answered and any resync finished.
func (c *Commit) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the commit resolves and returns the backend error, if any.
func (c *Commit) Wait() error {
	<-c.done
	return c.err
}

// Committer persists dropped placements. A failed move discards the local
// board and reloads it from the backend; nothing is retried.
type Committer struct {
	backend Backend
	reload  func(context.Context) error
	journal Journal
	logger  *log.Logger
}

func NewCommitter(backend Backend, reload func(context.Context) error, journal Journal, logger *log.Logger) *Committer {
	if logger == nil {
		logger = log.Default()
	}
	return &Committer{
		backend: backend,
		reload:  reload,
		journal: journal,
		logger:  logger,
	}
}

// Start issues the move request in the background.
func (c *Committer) Start(ctx context.Context, move Move) *Commit {
	commit := &Commit{Move: move, done: make(chan struct{})}
	go func() {
		defer close(commit.done)
		commit.err = c.Commit(ctx, move)
	}()
	return commit
}

// Commit sends a single move request and resyncs the board if it fails.
func (c *Committer) Commit(ctx context.Context, move Move) error {
	err := c.backend.MoveTask(ctx, move)
	if err == nil {
		c.record(ctx, move, model.OutcomeCommitted, nil)
		return nil
	}

	c.logger.Printf("❌ failed to move task %s to column %s at %d: %v", move.TaskID, move.ColumnID, move.Position, err)
	c.record(ctx, move, model.OutcomeFailed, err)

	if rerr := c.reload(ctx); rerr != nil {
		c.record(ctx, move, model.OutcomeResyncFailed, rerr)
	} else {
		c.record(ctx, move, model.OutcomeResynced, nil)
	}
	return err
}

func (c *Committer) record(ctx context.Context, move Move, outcome string, cause error) {
	if c.journal != nil {
		c.journal.Record(ctx, move, outcome, cause)
	}
}
