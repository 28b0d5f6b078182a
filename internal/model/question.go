package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is a gradable item attached to an assessment module or to a
// lesson quiz (exactly one of ModuleID/LessonID is set).
//
// CorrectAnswer is stored as jsonb and may carry any of the legacy
// encodings ("x", ["x","y"], {"answer":"x"}, {"answers":["x","y"]}).
// It is normalized through grading.ParseAnswerKey at every boundary;
// learner-facing DTOs never include it.
type Question struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID *uuid.UUID `json:"module_id,omitempty" gorm:"type:uuid;index"`
	LessonID *uuid.UUID `json:"lesson_id,omitempty" gorm:"type:uuid;index"`
	Text     string     `json:"text" gorm:"type:text;not null"`
	Type     string     `json:"type" gorm:"not null"` // "MCQ", "MSQ", "TF"
	Position int        `json:"position" gorm:"not null"`

	Options       datatypes.JSON `json:"options" gorm:"type:jsonb"` // [{"id":"opt1","text":"..."}]
	CorrectAnswer datatypes.JSON `json:"correct_answer,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Option is one entry of a question's jsonb options array.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
