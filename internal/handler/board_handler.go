package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	sessions Sessions
}

func NewBoardHandler(sessions Sessions) *BoardHandler {
	return &BoardHandler{sessions: sessions}
}

// Get возвращает доску проекта, загружая ее при первом открытии
func (h *BoardHandler) Get(c *gin.Context) {
	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, boardResponse(s))
}

// Refresh перезагружает доску с бэкенда (доска изменена извне)
func (h *BoardHandler) Refresh(c *gin.Context) {
	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Board.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boardResponse(s))
}

// GetTask возвращает полную карточку задачи (клик по задаче)
func (h *BoardHandler) GetTask(c *gin.Context) {
	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	task, err := s.Board.TaskClicked(c.Param("taskId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
