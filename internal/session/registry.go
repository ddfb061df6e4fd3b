// Package session keeps one mounted board per user and project.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/oauth2"

	"taskboard/internal/kanban"
	"taskboard/internal/model"
)

// BackendFactory builds the backend for one session. The token source always
// yields the token the user presented most recently.
type BackendFactory func(tokens oauth2.TokenSource) kanban.Backend

// JournalFactory returns the journal of one user's board, or nil.
type JournalFactory func(userID, projectID string) kanban.Journal

// Publisher pushes board events to live subscribers.
type Publisher interface {
	Publish(topic, msgType string, data any)
}

// Session is one user's board for one project.
type Session struct {
	ID        uuid.UUID
	UserID    string
	ProjectID string
	Board     *kanban.Board

	tokens   *tokenSource
	lastUsed time.Time
	ready    chan struct{}
	err      error
}

// Topic names the hub topic the session publishes to.
func (s *Session) Topic() string {
	return Topic(s.UserID, s.ProjectID)
}

func Topic(userID, projectID string) string {
	return userID + "/" + projectID
}

type Options struct {
	NewBackend BackendFactory
	Journal    JournalFactory
	Publisher  Publisher
	BoardOpts  []kanban.Option
	IdleTTL    time.Duration
}

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
	now      func() time.Time
}

func NewRegistry(opts Options) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		now:      time.Now,
	}
}

// Open returns the user's board for the project, mounting and loading it on
// first use. A board whose first load fails is not kept.
func (r *Registry) Open(ctx context.Context, userID, projectID, token string) (*Session, error) {
	key := Topic(userID, projectID)

	r.mu.Lock()
	if s, ok := r.sessions[key]; ok {
		s.lastUsed = r.now()
		s.tokens.Set(token)
		r.mu.Unlock()
		<-s.ready
		if s.err != nil {
			return nil, s.err
		}
		return s, nil
	}

	s := r.mount(userID, projectID, token)
	r.sessions[key] = s
	r.mu.Unlock()

	s.err = s.Board.Load(ctx)
	if s.err != nil {
		r.mu.Lock()
		if r.sessions[key] == s {
			delete(r.sessions, key)
		}
		r.mu.Unlock()
		close(s.ready)
		return nil, s.err
	}
	close(s.ready)
	log.Printf("✅ Mounted board %s for user %s", projectID, userID)
	return s, nil
}

// Get returns a mounted session without loading anything.
func (r *Registry) Get(userID, projectID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[Topic(userID, projectID)]
	if !ok {
		return nil, false
	}
	select {
	case <-s.ready:
	default:
		return nil, false
	}
	if s.err != nil {
		return nil, false
	}
	s.lastUsed = r.now()
	return s, true
}

// Close unmounts a session.
func (r *Registry) Close(userID, projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, Topic(userID, projectID))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep unmounts sessions idle for longer than the TTL. Boards with a drag
// in progress are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.opts.IdleTTL)
	evicted := 0
	for key, s := range r.sessions {
		select {
		case <-s.ready:
		default:
			continue
		}
		if s.lastUsed.After(cutoff) || s.Board.State() != kanban.StateIdle {
			continue
		}
		delete(r.sessions, key)
		evicted++
	}
	if evicted > 0 {
		log.Printf("🧹 Evicted %d idle board sessions", evicted)
	}
	return evicted
}

// StartSweeper runs Sweep on a cron schedule such as "@every 1m".
func (r *Registry) StartSweeper(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.Sweep() }); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func (r *Registry) mount(userID, projectID, token string) *Session {
	tokens := &tokenSource{}
	tokens.Set(token)

	opts := append([]kanban.Option(nil), r.opts.BoardOpts...)
	if r.opts.Journal != nil {
		if j := r.opts.Journal(userID, projectID); j != nil {
			opts = append(opts, kanban.WithJournal(j))
		}
	}

	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
		Board:     kanban.NewBoard(projectID, r.opts.NewBackend(tokens), opts...),
		tokens:    tokens,
		lastUsed:  r.now(),
		ready:     make(chan struct{}),
	}

	if pub := r.opts.Publisher; pub != nil {
		topic := s.Topic()
		s.Board.OnChange(func(b *model.Board) {
			pub.Publish(topic, "board", b)
		})
		s.Board.OnTaskClick(func(t model.Task) {
			pub.Publish(topic, "task_clicked", t)
		})
	}
	return s
}

// tokenSource hands the latest user token to the backend client.
type tokenSource struct {
	mu    sync.Mutex
	token string
}

func (t *tokenSource) Set(token string) {
	if token == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
}

func (t *tokenSource) Token() (*oauth2.Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &oauth2.Token{AccessToken: t.token, TokenType: "Bearer"}, nil
}
