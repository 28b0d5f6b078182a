package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// LessonProgress is the per-(student, lesson) rollup. QuizPassed is
// "any attempt passed"; attempts themselves are append-only QuizAttempt
// rows.
type LessonProgress struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:uuid;not null;uniqueIndex:idx_lesson_progress_student_lesson"`
	LessonID  uuid.UUID `json:"lesson_id" gorm:"type:uuid;not null;uniqueIndex:idx_lesson_progress_student_lesson"`

	VideoWatched         bool      `json:"video_watched"`
	WatchTimeSeconds     int       `json:"watch_time_seconds"`
	CompletionPercentage int       `json:"completion_percentage"`
	QuizPassed           bool      `json:"quiz_passed"`
	QuizAttemptCount     int       `json:"quiz_attempt_count"`
	LastActivityAt       time.Time `json:"last_activity_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// QuizAttempt is one graded attempt at a lesson quiz. Immutable once
// written.
type QuizAttempt struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:uuid;not null;index:idx_quiz_attempt_student_lesson"`
	LessonID  uuid.UUID `json:"lesson_id" gorm:"type:uuid;not null;index:idx_quiz_attempt_student_lesson"`

	Score          float64   `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	Passed         bool      `json:"passed"`
	SubmittedAt    time.Time `json:"submitted_at" gorm:"autoCreateTime"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ModuleProgress is the per-(student, module) completion row. Status is
// monotonic: once completed it never reverts except through an explicit
// admin action.
type ModuleProgress struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:uuid;not null;uniqueIndex:idx_module_progress_student_module"`
	ModuleID  uuid.UUID `json:"module_id" gorm:"type:uuid;not null;uniqueIndex:idx_module_progress_student_module"`

	Status             string     `json:"status" gorm:"not null;default:'not_started'"`
	ProgressPercentage int        `json:"progress_percentage"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *ModuleProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
