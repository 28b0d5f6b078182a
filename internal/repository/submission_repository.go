package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
)

type SubmissionRepository interface {
	Create(submission *model.AssessmentSubmission) error
	FindLatestByStudentAndModule(studentID, moduleID uuid.UUID) (*model.AssessmentSubmission, error)
	FindAllByStudentAndModule(studentID, moduleID uuid.UUID) ([]model.AssessmentSubmission, error)
	CountByStudentAndModule(studentID, moduleID uuid.UUID) (int64, error)

	// PassingTierScores returns the scores of all passing submissions
	// the student made against tier-determining assessments of the
	// product, for averaging at promotion time.
	PassingTierScores(studentID, productID uuid.UUID) ([]float64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(submission *model.AssessmentSubmission) error {
	return r.db.Create(submission).Error
}

func (r *submissionRepository) FindLatestByStudentAndModule(studentID, moduleID uuid.UUID) (*model.AssessmentSubmission, error) {
	var submission model.AssessmentSubmission
	err := r.db.
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		Order("attempt_number DESC").
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindAllByStudentAndModule(studentID, moduleID uuid.UUID) ([]model.AssessmentSubmission, error) {
	var submissions []model.AssessmentSubmission
	err := r.db.
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		Order("attempt_number ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) CountByStudentAndModule(studentID, moduleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.AssessmentSubmission{}).
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		Count(&count).Error
	return count, err
}

func (r *submissionRepository) PassingTierScores(studentID, productID uuid.UUID) ([]float64, error) {
	var scores []float64
	err := r.db.Model(&model.AssessmentSubmission{}).
		Joins("JOIN modules ON modules.id = assessment_submissions.module_id").
		Where("assessment_submissions.student_id = ?", studentID).
		Where("assessment_submissions.passed = ?", true).
		Where("assessment_submissions.deleted_at IS NULL").
		Where("modules.product_id = ?", productID).
		Where("modules.tier_determining = ?", true).
		Where("modules.deleted_at IS NULL").
		Pluck("assessment_submissions.score", &scores).Error
	return scores, err
}
