package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

// MoveHistory is the read side of the move journal.
type MoveHistory interface {
	ListByProject(ctx context.Context, projectID string, limit int) ([]model.MoveRecord, error)
	CountFailures(ctx context.Context, projectID string) (int64, error)
}

type JournalHandler struct {
	sessions Sessions
	history  MoveHistory
}

func NewJournalHandler(sessions Sessions, history MoveHistory) *JournalHandler {
	return &JournalHandler{sessions: sessions, history: history}
}

// MovesResponse представляет историю перемещений проекта
type MovesResponse struct {
	Moves    []model.MoveRecord `json:"moves"`
	Failures int64              `json:"failures"`
}

// List возвращает последние перемещения задач проекта.
// Доступ к проекту проверяется бэкендом при открытии доски.
func (h *JournalHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	projectID := s.ProjectID

	moves, err := h.history.ListByProject(c.Request.Context(), projectID, limit)
	if errors.Is(err, repository.ErrJournalDisabled) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Move journal is disabled"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load move history"})
		return
	}

	failures, err := h.history.CountFailures(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load move history"})
		return
	}

	c.JSON(http.StatusOK, MovesResponse{Moves: moves, Failures: failures})
}
