package dto

import (
	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-server/internal/model"
)

type RejectUserRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type ReviewUserTaskRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

type UpdateWithdrawalRequest struct {
	Status     model.TransactionStatus `json:"status" binding:"required,oneof=completed failed"`
	AdminNotes *string                 `json:"admin_notes" binding:"omitempty,max=500"`
}

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers          int64           `json:"total_users"`
	PendingApprovals    int64           `json:"pending_approvals"`
	ActiveSubscriptions int64           `json:"active_subscriptions"`
	PendingTasks        int64           `json:"pending_tasks"`
	PendingWithdrawals  int64           `json:"pending_withdrawals"`
	TotalTasks          int64           `json:"total_tasks"`
	TotalPaidOut        decimal.Decimal `json:"total_paid_out"`
}
