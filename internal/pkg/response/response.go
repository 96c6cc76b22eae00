package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Stable error codes returned to clients.
const (
	CodeParamError      = "PARAM_ERROR"
	CodeAuthFailed      = "AUTH_FAILED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeQuotaExceeded   = "QUOTA_EXCEEDED"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	CodeServerError     = "SERVER_ERROR"
	CodePaymentFailed   = "PAYMENT_FAILED"
	CodeAlreadyProcessed = "ALREADY_PROCESSED"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Message   string     `json:"message,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Timestamp: now()})
}

func SuccessWithMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message, Timestamp: now()})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data, Timestamp: now()})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success:   false,
		Error:     &ErrorBody{Message: message, Code: code},
		Timestamp: now(),
	})
}

func ParamError(c *gin.Context, message string) {
	if message == "" {
		message = "invalid request"
	}
	Error(c, http.StatusBadRequest, CodeParamError, message)
}

func AuthError(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	Error(c, http.StatusUnauthorized, CodeAuthFailed, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}
	Error(c, http.StatusForbidden, CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "resource not found"
	}
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, CodeConflict, message)
}

func QuotaError(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodeQuotaExceeded, message)
}

func ServerError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	Error(c, http.StatusInternalServerError, CodeServerError, message)
}
