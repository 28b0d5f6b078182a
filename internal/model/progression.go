package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProgressionEventPromotion = "assessment_promotion"
	ProgressionEventOverride  = "admin_override"
)

// StudentProgression is the current star/tier state for one student in
// one product. Tier is nil until the first promotion.
type StudentProgression struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:uuid;not null;uniqueIndex:idx_progression_student_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_progression_student_product"`

	StarLevel string  `json:"star_level" gorm:"not null;default:'NONE'"` // NONE, ONE..FIVE
	Tier      *string `json:"tier,omitempty"`                            // BRONZE, SILVER, GOLD

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *StudentProgression) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProgressionEvent is the append-only audit trail for star/tier
// changes. Reason is mandatory for admin overrides; it is what makes
// the override path auditable rather than silent.
type ProgressionEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `json:"student_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`

	EventType string  `json:"event_type" gorm:"not null"` // assessment_promotion, admin_override
	StarLevel string  `json:"star_level" gorm:"not null"`
	Tier      *string `json:"tier,omitempty"`
	Reason    string  `json:"reason,omitempty" gorm:"type:text"`
	ActorID   *string `json:"actor_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *ProgressionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
