package model

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	UserID    int64            `gorm:"not null;index" json:"user_id"`
	Title     string           `gorm:"size:200;not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Type      NotificationType `gorm:"size:15;not null" json:"type"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	Metadata  datatypes.JSON   `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
