package handler

import (
	"net/http"

	"taskboard/internal/kanban"
	"taskboard/internal/model"
	"taskboard/internal/session"

	"github.com/gin-gonic/gin"
)

type DragHandler struct {
	sessions Sessions
}

func NewDragHandler(sessions Sessions) *DragHandler {
	return &DragHandler{sessions: sessions}
}

// DragStartRequest представляет начало перетаскивания задачи
type DragStartRequest struct {
	TaskID string `json:"taskId" binding:"required"`
}

// DragTargetRequest представляет цель наведения или сброса: задачу или колонку.
// Пустая цель означает, что указатель вне доски.
type DragTargetRequest struct {
	TargetID string `json:"targetId"`
}

// PointerRequest представляет положение указателя; TaskID нужен только при нажатии
type PointerRequest struct {
	TaskID string  `json:"taskId,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// PointerMoveResponse сообщает, превратилось ли нажатие в перетаскивание
type PointerMoveResponse struct {
	BoardResponse
	Activated bool `json:"activated"`
}

// DropResponse представляет итоговое положение задачи после сброса
type DropResponse struct {
	Committed bool         `json:"committed"`
	Move      *kanban.Move `json:"move,omitempty"`
	Board     *model.Board `json:"board"`
}

// Start начинает перетаскивание
func (h *DragHandler) Start(c *gin.Context) {
	var req DragStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Board.DragStart(req.TaskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boardResponse(s))
}

// Over применяет живую перестановку при наведении
func (h *DragHandler) Over(c *gin.Context) {
	var req DragTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	if _, err := s.Board.DragOver(req.TargetID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boardResponse(s))
}

// Drop завершает перетаскивание и отправляет перемещение на бэкенд
func (h *DragHandler) Drop(c *gin.Context) {
	var req DragTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	commit, err := s.Board.Drop(c.Request.Context(), req.TargetID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCommit(c, s, commit)
}

// Cancel отменяет перетаскивание без сохранения
func (h *DragHandler) Cancel(c *gin.Context) {
	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Board.Cancel(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boardResponse(s))
}

// Press фиксирует нажатие на задачу; перетаскивание начнется после сдвига указателя
func (h *DragHandler) Press(c *gin.Context) {
	var req PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TaskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Board.Press(req.TaskID, kanban.Point{X: req.X, Y: req.Y}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boardResponse(s))
}

// PointerMove сообщает о движении указателя после нажатия
func (h *DragHandler) PointerMove(c *gin.Context) {
	var req PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	activated, err := s.Board.Move(kanban.Point{X: req.X, Y: req.Y})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PointerMoveResponse{BoardResponse: boardResponse(s), Activated: activated})
}

// Release отпускает указатель: до активации это клик по задаче,
// во время перетаскивания сброс на последнюю цель
func (h *DragHandler) Release(c *gin.Context) {
	s, ok := openSession(c, h.sessions)
	if !ok {
		return
	}
	commit, err := s.Board.Release(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondCommit(c, s, commit)
}

// respondCommit отвечает 202 с итоговым положением, если перемещение ушло на бэкенд
func respondCommit(c *gin.Context, s *session.Session, commit *kanban.Commit) {
	resp := DropResponse{Board: s.Board.Snapshot()}
	if commit == nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Committed = true
	resp.Move = &commit.Move
	c.JSON(http.StatusAccepted, resp)
}
