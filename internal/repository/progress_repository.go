package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
)

type ProgressRepository interface {
	FindLessonProgress(studentID, lessonID uuid.UUID) (*model.LessonProgress, error)
	FindLessonProgressForModule(studentID uuid.UUID, lessonIDs []uuid.UUID) ([]model.LessonProgress, error)
	UpsertLessonProgress(progress *model.LessonProgress) error

	CreateQuizAttempt(attempt *model.QuizAttempt) error

	FindModuleProgress(studentID, moduleID uuid.UUID) (*model.ModuleProgress, error)
	UpsertModuleProgress(progress *model.ModuleProgress) error
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) FindLessonProgress(studentID, lessonID uuid.UUID) (*model.LessonProgress, error) {
	var progress model.LessonProgress
	err := r.db.
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepository) FindLessonProgressForModule(studentID uuid.UUID, lessonIDs []uuid.UUID) ([]model.LessonProgress, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	var progress []model.LessonProgress
	err := r.db.
		Where("student_id = ? AND lesson_id IN ?", studentID, lessonIDs).
		Find(&progress).Error
	return progress, err
}

func (r *progressRepository) UpsertLessonProgress(progress *model.LessonProgress) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"video_watched", "watch_time_seconds", "completion_percentage",
			"quiz_passed", "quiz_attempt_count", "last_activity_at", "updated_at",
		}),
	}).Create(progress).Error
}

func (r *progressRepository) CreateQuizAttempt(attempt *model.QuizAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *progressRepository) FindModuleProgress(studentID, moduleID uuid.UUID) (*model.ModuleProgress, error) {
	var progress model.ModuleProgress
	err := r.db.
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepository) UpsertModuleProgress(progress *model.ModuleProgress) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "progress_percentage", "completed_at", "updated_at",
		}),
	}).Create(progress).Error
}
