package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// TierThresholdsDTO mirrors the per-product threshold table. Optional
// everywhere it appears; the documented default applies when absent.
type TierThresholdsDTO struct {
	Bronze ScoreRangeDTO `json:"bronze"`
	Silver ScoreRangeDTO `json:"silver"`
	Gold   ScoreRangeDTO `json:"gold"`
}

type ScoreRangeDTO struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ProductCreateDTO is for admins to create a Job Readiness product.
type ProductCreateDTO struct {
	Name           string             `json:"name" binding:"required"`
	Description    string             `json:"description,omitempty"`
	TierThresholds *TierThresholdsDTO `json:"tier_thresholds,omitempty"`
}

// OptionCreateDTO is one answer option of a question.
type OptionCreateDTO struct {
	ID   string `json:"id" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// QuestionCreateDTO carries a question in any of the accepted
// correct-answer encodings; it is normalized (and rejected when
// malformed) at authoring time.
type QuestionCreateDTO struct {
	Text          string            `json:"text" binding:"required"`
	Type          string            `json:"type" binding:"required,oneof=MCQ MSQ TF"`
	Position      int               `json:"position" binding:"required,min=1"`
	Options       []OptionCreateDTO `json:"options" binding:"omitempty,dive"`
	CorrectAnswer json.RawMessage   `json:"correct_answer" binding:"required"`
}

// LessonCreateDTO is one lesson of a course module.
type LessonCreateDTO struct {
	Title     string              `json:"title" binding:"required"`
	Position  int                 `json:"position" binding:"required,min=1"`
	VideoURL  *string             `json:"video_url,omitempty"`
	HasQuiz   bool                `json:"has_quiz"`
	Questions []QuestionCreateDTO `json:"questions" binding:"omitempty,dive"`
}

// ModuleCreateDTO is for admins to create a module with its content in
// one request. Assessments carry Questions; courses carry Lessons.
type ModuleCreateDTO struct {
	ProductID       *uuid.UUID          `json:"product_id,omitempty"`
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description,omitempty"`
	Type            string              `json:"type" binding:"required,oneof=course assessment"`
	PassThreshold   *float64            `json:"pass_threshold,omitempty" binding:"omitempty,min=0,max=100"`
	TierDetermining bool                `json:"tier_determining"`
	RetakesAllowed  bool                `json:"retakes_allowed"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"omitempty,dive"`
	Lessons         []LessonCreateDTO   `json:"lessons" binding:"omitempty,dive"`
}

// ProgressionOverrideDTO is the admin escape hatch. Reason is mandatory
// and audited; the binding rejects an empty string before the service
// is ever reached.
type ProgressionOverrideDTO struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	StarLevel string    `json:"star_level" binding:"required,oneof=NONE ONE TWO THREE FOUR FIVE"`
	Tier      string    `json:"tier" binding:"required,oneof=BRONZE SILVER GOLD"`
	Reason    string    `json:"reason" binding:"required"`
	ActorID   *string   `json:"actor_id,omitempty"`
}
