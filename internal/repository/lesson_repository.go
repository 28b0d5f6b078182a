package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
)

type LessonRepository interface {
	FindByID(id uuid.UUID) (*model.Lesson, error)
	FindByIDWithQuestions(id uuid.UUID) (*model.Lesson, error)
	FindByModuleID(moduleID uuid.UUID) ([]model.Lesson, error)
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) FindByID(id uuid.UUID) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.db.First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) FindByIDWithQuestions(id uuid.UUID) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		First(&lesson, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) FindByModuleID(moduleID uuid.UUID) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.db.
		Where("module_id = ?", moduleID).
		Order("position ASC").
		Find(&lessons).Error
	return lessons, err
}
