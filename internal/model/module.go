package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ModuleTypeCourse     = "course"
	ModuleTypeAssessment = "assessment"
)

// Module is either a course (lessons with videos and optional quizzes)
// or an assessment (a flat question set graded in one submission).
type Module struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty" gorm:"type:uuid;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type" gorm:"not null;index"` // "course" or "assessment"

	// PassThreshold overrides the configured default (60) when set.
	PassThreshold *float64 `json:"pass_threshold,omitempty"`

	// TierDetermining marks assessments whose scores feed star/tier
	// progression for the owning product.
	TierDetermining bool `json:"tier_determining" gorm:"default:false"`

	RetakesAllowed bool `json:"retakes_allowed" gorm:"default:false"`

	Questions []Question     `json:"questions,omitempty" gorm:"foreignKey:ModuleID"`
	Lessons   []Lesson       `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Lesson belongs to a course module. HasQuiz controls the completion
// rule: video watched AND quiz passed, versus video watched alone.
type Lesson struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID  uuid.UUID  `json:"module_id" gorm:"type:uuid;not null;index"`
	Title     string     `json:"title" gorm:"not null"`
	Position  int        `json:"position" gorm:"not null"`
	VideoURL  *string    `json:"video_url,omitempty"`
	HasQuiz   bool       `json:"has_quiz" gorm:"default:false"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:LessonID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
