package handler

import (
	"context"
	"errors"
	"net/http"

	"taskboard/internal/client"
	"taskboard/internal/kanban"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/session"

	"github.com/gin-gonic/gin"
)

// Sessions is the part of the session registry the handlers need.
type Sessions interface {
	Open(ctx context.Context, userID, projectID, token string) (*session.Session, error)
	Get(userID, projectID string) (*session.Session, bool)
}

// BoardResponse представляет доску вместе с состоянием перетаскивания
type BoardResponse struct {
	ProjectID string              `json:"projectId"`
	Board     *model.Board        `json:"board"`
	State     string              `json:"state"`
	Loading   bool                `json:"loading"`
	ReadOnly  bool                `json:"readOnly"`
	Session   *kanban.DragSession `json:"session,omitempty"`
}

func boardResponse(s *session.Session) BoardResponse {
	resp := BoardResponse{
		ProjectID: s.ProjectID,
		Board:     s.Board.Snapshot(),
		State:     s.Board.State().String(),
		Loading:   s.Board.Loading(),
		ReadOnly:  s.Board.ReadOnly(),
	}
	if ds, ok := s.Board.Session(); ok {
		resp.Session = &ds
	}
	return resp
}

// currentUser достает ID пользователя и токен, положенные middleware
func currentUser(c *gin.Context) (string, string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", "", false
	}
	return userID, c.GetString(middleware.TokenKey), true
}

// openSession монтирует доску проекта текущего пользователя
func openSession(c *gin.Context, sessions Sessions) (*session.Session, bool) {
	userID, token, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	projectID := c.Param("id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return nil, false
	}

	s, err := sessions.Open(c.Request.Context(), userID, projectID, token)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

// respondError переводит ошибки движка и бэкенда в HTTP статусы
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, kanban.ErrReadOnly):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to move tasks on this board"})
	case errors.Is(err, kanban.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, kanban.ErrTargetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Drop target not found"})
	case errors.Is(err, kanban.ErrNotDragging),
		errors.Is(err, kanban.ErrAlreadyDragging),
		errors.Is(err, kanban.ErrNotPressed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, kanban.ErrNotLoaded):
		c.JSON(http.StatusConflict, gin.H{"error": "Board not loaded"})
	case errors.Is(err, client.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Backend rejected the credentials"})
	case errors.Is(err, client.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this project"})
	case errors.Is(err, client.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load board"})
	}
}
