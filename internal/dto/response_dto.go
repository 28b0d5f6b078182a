package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// OptionDTO is an answer option as shown to learners.
type OptionDTO struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionDTO is a question as returned over HTTP. CorrectAnswer is
// populated on admin routes only; learner routes never carry it.
type QuestionDTO struct {
	ID            uuid.UUID       `json:"id"`
	Text          string          `json:"text"`
	Type          string          `json:"type"`
	Position      int             `json:"position"`
	Options       []OptionDTO     `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer,omitempty"`
}

type LessonDTO struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Position  int           `json:"position"`
	VideoURL  *string       `json:"video_url,omitempty"`
	HasQuiz   bool          `json:"has_quiz"`
	Questions []QuestionDTO `json:"questions,omitempty"`
}

// ModuleSummaryDTO is used for listing modules.
type ModuleSummaryDTO struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       *uuid.UUID `json:"product_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Type            string     `json:"type"`
	TierDetermining bool       `json:"tier_determining"`
	QuestionCount   int        `json:"question_count"`
	LessonCount     int        `json:"lesson_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ModuleDetailDTO is the full learner-facing module.
type ModuleDetailDTO struct {
	ID              uuid.UUID     `json:"id"`
	ProductID       *uuid.UUID    `json:"product_id,omitempty"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Type            string        `json:"type"`
	PassThreshold   float64       `json:"pass_threshold"`
	TierDetermining bool          `json:"tier_determining"`
	RetakesAllowed  bool          `json:"retakes_allowed"`
	Questions       []QuestionDTO `json:"questions,omitempty"`
	Lessons         []LessonDTO   `json:"lessons,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// GradingResponseDTO is the outcome of an assessment submission.
type GradingResponseDTO struct {
	SubmissionID   uuid.UUID `json:"submission_id"`
	Score          int       `json:"score"`
	Passed         bool      `json:"passed"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// SubmissionSummaryDTO is one row of a student's submission history.
type SubmissionSummaryDTO struct {
	ID             uuid.UUID `json:"id"`
	ModuleID       uuid.UUID `json:"module_id"`
	AttemptNumber  int       `json:"attempt_number"`
	Score          int       `json:"score"`
	Passed         bool      `json:"passed"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// QuizAttemptResponseDTO is the outcome of a lesson quiz attempt.
type QuizAttemptResponseDTO struct {
	AttemptID      uuid.UUID          `json:"attempt_id"`
	Score          int                `json:"score"`
	Passed         bool               `json:"passed"`
	CorrectAnswers int                `json:"correct_answers"`
	TotalQuestions int                `json:"total_questions"`
	SubmittedAt    time.Time          `json:"submitted_at"`
	ModuleProgress *ModuleProgressDTO `json:"module_progress,omitempty"`
}

// ModuleProgressDTO is the derived completion state for one module.
type ModuleProgressDTO struct {
	ModuleID           uuid.UUID  `json:"module_id"`
	Status             string     `json:"status"`
	ProgressPercentage int        `json:"progress_percentage"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// ProgressionDTO is the current star/tier state for a student.
type ProgressionDTO struct {
	StudentID uuid.UUID `json:"student_id"`
	ProductID uuid.UUID `json:"product_id"`
	StarLevel string    `json:"star_level"`
	Tier      *string   `json:"tier,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductResponseDTO is the admin view of a product.
type ProductResponseDTO struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	TierThresholds *TierThresholdsDTO `json:"tier_thresholds,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}
