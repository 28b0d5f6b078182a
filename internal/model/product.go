package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product groups the modules of a Job Readiness style offering. The
// tier threshold table is stored as jsonb; a null value means the
// documented default table applies.
type Product struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string         `json:"name" gorm:"not null;uniqueIndex"`
	Description    string         `json:"description,omitempty"`
	TierThresholds datatypes.JSON `json:"tier_thresholds,omitempty" gorm:"type:jsonb"`
	Modules        []Module       `json:"modules,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
