package model

import (
	"time"

	"github.com/google/uuid"
)

// MoveRecord is one journal row describing what happened to a committed move.
type MoveRecord struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"userId" gorm:"not null;index"`
	ProjectID string    `json:"projectId" gorm:"not null;index"`
	TaskID    string    `json:"taskId" gorm:"not null"`
	ColumnID  string    `json:"columnId" gorm:"not null"`
	Position  int       `json:"position" gorm:"not null"`
	Outcome   string    `json:"outcome" gorm:"not null;check:outcome IN ('committed', 'failed', 'resynced', 'resync_failed')"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// Journal outcomes
const (
	OutcomeCommitted    = "committed"     // backend acknowledged the move
	OutcomeFailed       = "failed"        // backend rejected or was unreachable
	OutcomeResynced     = "resynced"      // board reloaded after a failure
	OutcomeResyncFailed = "resync_failed" // reload after a failure also failed
)
