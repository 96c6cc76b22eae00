package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-server/internal/model"
)

type CreateTaskRequest struct {
	Title         string          `json:"title" binding:"required,max=200"`
	Description   string          `json:"description" binding:"required"`
	Category      model.Category  `json:"category" binding:"required,oneof=main social surveys testing ai"`
	URL           *string         `json:"url" binding:"omitempty,url,max=500"`
	Reward        decimal.Decimal `json:"reward" binding:"required"`
	MinTier       model.Tier      `json:"min_tier" binding:"required,oneof=member silver bronze diamond gold vip"`
	MinDuration   int             `json:"min_duration" binding:"omitempty,min=0"`
	IsOrientation bool            `json:"is_orientation"`
}

type UpdateTaskRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	URL         *string          `json:"url" binding:"omitempty,url,max=500"`
	Reward      *decimal.Decimal `json:"reward"`
	MinTier     *model.Tier      `json:"min_tier" binding:"omitempty,oneof=member silver bronze diamond gold vip"`
	MinDuration *int             `json:"min_duration" binding:"omitempty,min=0"`
	IsActive    *bool            `json:"is_active"`
}

type StartTaskRequest struct {
	TaskID int64 `json:"task_id" binding:"required"`
}

type CompleteTaskRequest struct {
	Metadata map[string]any `json:"metadata"`
}

// TaskListResponse is the eligible-task payload: the tasks themselves plus
// the quota context the client renders alongside them.
type TaskListResponse struct {
	Tasks        []model.Task `json:"tasks"`
	DailyLimit   int          `json:"daily_limit"`
	StartedToday int          `json:"started_today"`
	Remaining    int          `json:"remaining"`
}

// OrientationProgressResponse mirrors the stored per-category progress with
// the completion counts the onboarding screen displays.
type OrientationProgressResponse struct {
	Status           model.OrientationStatus `json:"status"`
	CompletedTotal   int                     `json:"completed_total"`
	RequiredTotal    int                     `json:"required_total"`
	OverallCompleted bool                    `json:"overall_completed"`
}

type UserTaskResponse struct {
	ID              int64            `json:"id"`
	Task            *model.Task      `json:"task,omitempty"`
	Status          model.TaskStatus `json:"status"`
	StartedAt       time.Time        `json:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
}
