package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserTask is one user's attempt at one task, reviewed by an admin.
type UserTask struct {
	ID              int64          `gorm:"primaryKey" json:"id"`
	UserID          int64          `gorm:"not null;index" json:"user_id"`
	TaskID          int64          `gorm:"not null;index" json:"task_id"`
	Status          TaskStatus     `gorm:"size:10;not null;default:pending;index" json:"status"`
	StartedAt       time.Time      `gorm:"not null;index" json:"started_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectionReason *string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	Metadata        datatypes.JSON `json:"metadata,omitempty"`

	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (UserTask) TableName() string {
	return "user_tasks"
}
