package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/service"
)

// AdminHandler serves the review queues and the dashboard. All routes sit
// behind the AdminOnly middleware.
type AdminHandler struct {
	approvalService *service.ApprovalService
	userService     *service.UserService
}

func NewAdminHandler(approvalService *service.ApprovalService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		approvalService: approvalService,
		userService:     userService,
	}
}

// ListUsers returns all users, newest first.
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, users)
}

// ApproveUser admits a user.
// POST /api/v1/admin/users/:id/approve
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid user id")
		return
	}

	user, err := h.approvalService.ApproveUser(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, "user was already rejected")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, user)
}

// RejectUser turns a user away, recording the reason.
// POST /api/v1/admin/users/:id/reject
func (h *AdminHandler) RejectUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid user id")
		return
	}

	var req dto.RejectUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.approvalService.RejectUser(userID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, "user was already approved")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, user)
}

// ListPendingUserTasks returns the submitted-attempt review queue.
// GET /api/v1/admin/user-tasks/pending
func (h *AdminHandler) ListPendingUserTasks(c *gin.Context) {
	userTasks, err := h.approvalService.ListPendingUserTasks()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, userTasks)
}

// ApproveUserTask accepts an attempt and pays its reward.
// POST /api/v1/admin/user-tasks/:id/approve
func (h *AdminHandler) ApproveUserTask(c *gin.Context) {
	userTaskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid user task id")
		return
	}

	userTask, err := h.approvalService.ApproveUserTask(userTaskID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "submission not found")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, "submission was already rejected")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, userTask)
}

// RejectUserTask declines an attempt.
// POST /api/v1/admin/user-tasks/:id/reject
func (h *AdminHandler) RejectUserTask(c *gin.Context) {
	userTaskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid user task id")
		return
	}

	var req dto.ReviewUserTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	userTask, err := h.approvalService.RejectUserTask(userTaskID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "submission not found")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, "submission was already approved")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, userTask)
}

// ListWithdrawals returns every withdrawal request.
// GET /api/v1/admin/withdrawals
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	withdrawals, err := h.userService.ListAllWithdrawals()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, withdrawals)
}

// UpdateWithdrawal settles a withdrawal request.
// PATCH /api/v1/admin/withdrawals/:id
func (h *AdminHandler) UpdateWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid withdrawal id")
		return
	}

	var req dto.UpdateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	withdrawal, err := h.approvalService.UpdateWithdrawal(withdrawalID, req.Status, req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "withdrawal not found")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, "withdrawal already settled")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, withdrawal)
}

// Stats returns the dashboard counters.
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.userService.Stats()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, stats)
}
