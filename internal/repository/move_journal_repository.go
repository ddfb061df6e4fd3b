package repository

import (
	"context"
	"log"

	"taskboard/internal/kanban"
	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MoveJournalRepository struct {
	db *gorm.DB
}

func NewMoveJournalRepository(db *gorm.DB) *MoveJournalRepository {
	return &MoveJournalRepository{db: db}
}

// Create inserts a journal row, assigning an id when missing.
func (r *MoveJournalRepository) Create(ctx context.Context, rec *model.MoveRecord) error {
	if r.db == nil {
		return ErrJournalDisabled
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListByProject returns the newest records of a project first.
func (r *MoveJournalRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]model.MoveRecord, error) {
	if r.db == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		limit = 50
	}
	var records []model.MoveRecord
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// CountFailures counts failed commits of a project.
func (r *MoveJournalRepository) CountFailures(ctx context.Context, projectID string) (int64, error) {
	if r.db == nil {
		return 0, ErrJournalDisabled
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MoveRecord{}).
		Where("project_id = ? AND outcome = ?", projectID, model.OutcomeFailed).
		Count(&count).Error
	return count, err
}

// For binds the repository to one user's board so it can serve as that
// board's kanban.Journal.
func (r *MoveJournalRepository) For(userID, projectID string) kanban.Journal {
	return &boundJournal{repo: r, userID: userID, projectID: projectID}
}

type boundJournal struct {
	repo      *MoveJournalRepository
	userID    string
	projectID string
}

func (j *boundJournal) Record(ctx context.Context, move kanban.Move, outcome string, cause error) {
	rec := &model.MoveRecord{
		UserID:    j.userID,
		ProjectID: j.projectID,
		TaskID:    move.TaskID,
		ColumnID:  move.ColumnID,
		Position:  move.Position,
		Outcome:   outcome,
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := j.repo.Create(ctx, rec); err != nil && err != ErrJournalDisabled {
		log.Printf("⚠️  Failed to journal move of task %s: %v", move.TaskID, err)
	}
}
