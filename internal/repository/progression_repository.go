package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
)

type ProgressionRepository interface {
	// FindOrInit returns the stored progression row, or an unsaved row
	// at NONE when the student has none yet.
	FindOrInit(studentID, productID uuid.UUID) (*model.StudentProgression, error)
	Upsert(progression *model.StudentProgression) error
	CreateEvent(event *model.ProgressionEvent) error
}

type progressionRepository struct {
	db *gorm.DB
}

func NewProgressionRepository(db *gorm.DB) ProgressionRepository {
	return &progressionRepository{db: db}
}

func (r *progressionRepository) FindOrInit(studentID, productID uuid.UUID) (*model.StudentProgression, error) {
	var progression model.StudentProgression
	err := r.db.
		Where("student_id = ? AND product_id = ?", studentID, productID).
		First(&progression).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.StudentProgression{
			StudentID: studentID,
			ProductID: productID,
			StarLevel: "NONE",
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &progression, nil
}

func (r *progressionRepository) Upsert(progression *model.StudentProgression) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"star_level", "tier", "updated_at"}),
	}).Create(progression).Error
}

func (r *progressionRepository) CreateEvent(event *model.ProgressionEvent) error {
	return r.db.Create(event).Error
}
