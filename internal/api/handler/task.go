package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-server/internal/api/middleware"
	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// List returns the tasks the caller may start, with quota context.
// GET /api/v1/tasks?category=social
func (h *TaskHandler) List(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var category *model.Category
	if raw := c.Query("category"); raw != "" {
		cat := model.Category(raw)
		category = &cat
	}

	resp, err := h.taskService.ListEligible(user, category)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			response.Forbidden(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Start admits the caller to a task.
// POST /api/v1/tasks/:id/start
func (h *TaskHandler) Start(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid task id")
		return
	}

	userTask, err := h.taskService.StartTask(user, taskID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "task not found")
		case errors.Is(err, service.ErrQuotaExceeded):
			response.QuotaError(c, err.Error())
		case errors.Is(err, service.ErrCategoryAlreadyComplete):
			response.Conflict(c, err.Error())
		case errors.Is(err, service.ErrAccessDenied):
			response.Forbidden(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, userTask)
}

// ListMine returns the caller's attempts, newest first.
// GET /api/v1/tasks/mine
func (h *TaskHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	userTasks, err := h.taskService.ListUserTasks(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, userTasks)
}

// OrientationProgress returns the onboarding progress summary.
// GET /api/v1/orientation/progress
func (h *TaskHandler) OrientationProgress(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	response.Success(c, h.taskService.OrientationProgress(user))
}

// CompleteOrientationTask records one finished onboarding task.
// POST /api/v1/orientation/complete-task
func (h *TaskHandler) CompleteOrientationTask(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req struct {
		Category model.Category `json:"category" binding:"required,oneof=main social surveys testing ai"`
		TaskID   int64          `json:"task_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	status, err := h.taskService.RecordOrientationCompletion(user, req.Category, req.TaskID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.ParamError(c, "unknown category")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"orientation_status": status})
}

// Create adds a catalog task (admin).
// POST /api/v1/admin/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(&req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTier) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Created(c, task)
}

// Update edits a catalog task (admin).
// PATCH /api/v1/admin/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid task id")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(taskID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "task not found")
		case errors.Is(err, service.ErrUnknownTier):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, task)
}

// Delete removes a catalog task (admin).
// DELETE /api/v1/admin/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid task id")
		return
	}

	if err := h.taskService.DeleteTask(taskID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "task not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
