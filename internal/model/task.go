package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Task struct {
	ID            int64           `gorm:"primaryKey" json:"id"`
	Title         string          `gorm:"size:200;not null" json:"title"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Category      Category        `gorm:"size:10;not null;index" json:"category"`
	URL           *string         `gorm:"size:500" json:"url,omitempty"`
	Reward        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"reward"`
	MinTier       Tier            `gorm:"size:10;not null" json:"min_tier"`
	MinDuration   int             `gorm:"not null;default:150" json:"min_duration"` // seconds
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	IsOrientation bool            `gorm:"not null;default:false" json:"is_orientation"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Task) TableName() string {
	return "tasks"
}
