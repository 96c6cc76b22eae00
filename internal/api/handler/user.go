package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-server/internal/api/middleware"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile returns the caller's row plus evaluated capabilities, so the
// client can route without re-deriving the progression rules.
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	response.Success(c, gin.H{
		"user":   user,
		"access": h.userService.Capabilities(user),
	})
}

// UpdateProfile edits name, phone or gender.
// PUT /api/v1/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, user)
}

// GetAccess returns just the capability set.
// GET /api/v1/user/access
func (h *UserHandler) GetAccess(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	response.Success(c, h.userService.Capabilities(user))
}
