package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentSubmission is one graded attempt at an assessment module.
// The composite unique index is the double-submission guard: two
// concurrent submissions for the same (student, module, attempt) pair
// cannot both insert, and the loser is reported as a conflict.
type AssessmentSubmission struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     uuid.UUID `json:"student_id" gorm:"type:uuid;not null;uniqueIndex:idx_submission_student_module_attempt"`
	ModuleID      uuid.UUID `json:"module_id" gorm:"type:uuid;not null;uniqueIndex:idx_submission_student_module_attempt"`
	AttemptNumber int       `json:"attempt_number" gorm:"not null;default:1;uniqueIndex:idx_submission_student_module_attempt"`

	// Answers preserves the submission exactly as received; graded
	// outcome fields are derived once and immutable afterwards.
	Answers        datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	Score          float64        `json:"score"`
	CorrectCount   int            `json:"correct_count"`
	TotalQuestions int            `json:"total_questions"`
	Passed         bool           `json:"passed"`
	SubmittedAt    time.Time      `json:"submitted_at" gorm:"autoCreateTime"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *AssessmentSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
