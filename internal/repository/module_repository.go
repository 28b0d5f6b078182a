package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
)

type ModuleRepository interface {
	Create(module *model.Module) error
	FindByID(id uuid.UUID) (*model.Module, error)
	FindByIDWithContent(id uuid.UUID) (*model.Module, error)
	FindAllWithCounts() ([]ModuleWithCounts, error)
}

type ModuleWithCounts struct {
	model.Module
	QuestionCount int
	LessonCount   int
}

type moduleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) Create(module *model.Module) error {
	// Create with associations persists questions and lessons (and
	// lesson questions) in one go.
	return r.db.Create(module).Error
}

func (r *moduleRepository) FindByID(id uuid.UUID) (*model.Module, error) {
	var module model.Module
	if err := r.db.First(&module, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) FindByIDWithContent(id uuid.UUID) (*model.Module, error) {
	var module model.Module
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.position ASC")
		}).
		Preload("Lessons.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		First(&module, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) FindAllWithCounts() ([]ModuleWithCounts, error) {
	var results []ModuleWithCounts
	err := r.db.Model(&model.Module{}).
		Select(`modules.*,
			(SELECT COUNT(*) FROM questions WHERE questions.module_id = modules.id AND questions.deleted_at IS NULL) AS question_count,
			(SELECT COUNT(*) FROM lessons WHERE lessons.module_id = modules.id AND lessons.deleted_at IS NULL) AS lesson_count`).
		Where("modules.deleted_at IS NULL").
		Order("modules.created_at DESC").
		Scan(&results).Error
	return results, err
}
