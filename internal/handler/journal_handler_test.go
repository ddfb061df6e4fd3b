package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/client"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMoveHistory мок для истории перемещений
type MockMoveHistory struct {
	mock.Mock
}

func (m *MockMoveHistory) ListByProject(ctx context.Context, projectID string, limit int) ([]model.MoveRecord, error) {
	args := m.Called(ctx, projectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MoveRecord), args.Error(1)
}

func (m *MockMoveHistory) CountFailures(ctx context.Context, projectID string) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

// fakeSessions открывает проекты без бэкенда; ошибка в denied означает отказ в доступе
type fakeSessions struct {
	denied map[string]error
}

func (f *fakeSessions) Open(ctx context.Context, userID, projectID, token string) (*session.Session, error) {
	if err, ok := f.denied[projectID]; ok {
		return nil, err
	}
	return &session.Session{UserID: userID, ProjectID: projectID}, nil
}

func (f *fakeSessions) Get(userID, projectID string) (*session.Session, bool) {
	return nil, false
}

func setupJournalRouter(history handler.MoveHistory) *gin.Engine {
	return setupJournalRouterWith(&fakeSessions{}, history)
}

func setupJournalRouterWith(sessions handler.Sessions, history handler.MoveHistory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewJournalHandler(sessions, history)
	r.GET("/projects/:id/moves", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "u1")
		h.List(c)
	})
	return r
}

func TestJournalHandler_List(t *testing.T) {
	// Arrange
	history := new(MockMoveHistory)
	records := []model.MoveRecord{
		{ProjectID: "p1", TaskID: "A", ColumnID: "done", Position: 0, Outcome: model.OutcomeFailed, Error: "boom"},
		{ProjectID: "p1", TaskID: "B", ColumnID: "todo", Position: 2, Outcome: model.OutcomeCommitted},
	}
	history.On("ListByProject", mock.Anything, "p1", 10).Return(records, nil)
	history.On("CountFailures", mock.Anything, "p1").Return(int64(1), nil)
	router := setupJournalRouter(history)

	// Act
	req, _ := http.NewRequest("GET", "/projects/p1/moves?limit=10", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	var out handler.MovesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Len(t, out.Moves, 2)
	assert.Equal(t, int64(1), out.Failures)
	history.AssertExpectations(t)
}

func TestJournalHandler_DefaultLimit(t *testing.T) {
	history := new(MockMoveHistory)
	history.On("ListByProject", mock.Anything, "p1", 50).Return([]model.MoveRecord{}, nil)
	history.On("CountFailures", mock.Anything, "p1").Return(int64(0), nil)

	req, _ := http.NewRequest("GET", "/projects/p1/moves", nil)
	resp := httptest.NewRecorder()
	setupJournalRouter(history).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	history.AssertExpectations(t)
}

func TestJournalHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{"bad limit", "?limit=abc", nil, http.StatusBadRequest},
		{"limit too large", "?limit=1000", nil, http.StatusBadRequest},
		{"journal disabled", "", repository.ErrJournalDisabled, http.StatusNotFound},
		{"db error", "", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := new(MockMoveHistory)
			if tt.err != nil {
				history.On("ListByProject", mock.Anything, "p1", 50).Return(nil, tt.err)
			}

			req, _ := http.NewRequest("GET", "/projects/p1/moves"+tt.query, nil)
			resp := httptest.NewRecorder()
			setupJournalRouter(history).ServeHTTP(resp, req)

			assert.Equal(t, tt.status, resp.Code)
			history.AssertExpectations(t)
		})
	}
}

func TestJournalHandler_ProjectAccessIsChecked(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"forbidden", &client.APIError{StatusCode: http.StatusForbidden, Message: "Access denied"}, http.StatusForbidden},
		{"unknown project", &client.APIError{StatusCode: http.StatusNotFound, Message: "Project not found"}, http.StatusNotFound},
		{"expired backend token", &client.APIError{StatusCode: http.StatusUnauthorized}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			history := new(MockMoveHistory)
			sessions := &fakeSessions{denied: map[string]error{"secret": tt.err}}

			// Act
			req, _ := http.NewRequest("GET", "/projects/secret/moves", nil)
			resp := httptest.NewRecorder()
			setupJournalRouterWith(sessions, history).ServeHTTP(resp, req)

			// Assert
			assert.Equal(t, tt.status, resp.Code)
			assert.NotContains(t, resp.Body.String(), "moves")
			history.AssertNotCalled(t, "ListByProject", mock.Anything, mock.Anything, mock.Anything)
			history.AssertNotCalled(t, "CountFailures", mock.Anything, mock.Anything)
		})
	}
}
