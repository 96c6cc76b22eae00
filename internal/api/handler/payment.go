package handler

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/api/middleware"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/paypal"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	cfg            *config.PayPalConfig
}

func NewPaymentHandler(paymentService *service.PaymentService, cfg *config.PayPalConfig) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		cfg:            cfg,
	}
}

// CreateOrder opens a subscription purchase.
// POST /api/v1/payments/orders
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.CreateOrder(c.Request.Context(), user, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownTier):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUpstreamPaymentFailure):
			response.Error(c, 502, response.CodePaymentFailed, "payment provider unavailable")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, resp)
}

// CaptureOrder completes an approved purchase.
// POST /api/v1/payments/orders/capture
func (h *PaymentHandler) CaptureOrder(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.CaptureOrder(c.Request.Context(), user, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrAlreadyProcessed):
			response.Error(c, 409, response.CodeAlreadyProcessed, "order already processed")
		case errors.Is(err, service.ErrUpstreamPaymentFailure):
			response.Error(c, 402, response.CodePaymentFailed, "payment was not completed")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// RetryPayment re-opens a failed purchase.
// POST /api/v1/payments/orders/retry
func (h *PaymentHandler) RetryPayment(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.RetryPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.RetryFailedPayment(c.Request.Context(), user, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, "order is not in a failed state")
		case errors.Is(err, service.ErrUpstreamPaymentFailure):
			response.Error(c, 502, response.CodePaymentFailed, "payment provider unavailable")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// ListOrders returns the caller's payment history.
// GET /api/v1/payments/orders
func (h *PaymentHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	orders, err := h.paymentService.ListOrders(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, orders)
}

// Webhook receives provider events. The provider expects a 2xx for every
// event it should not redeliver, so verified-but-unprocessable events are
// still acked after logging.
// POST /api/v1/payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ParamError(c, "unreadable body")
		return
	}

	if !paypal.VerifyWebhookSignature(c.Request.Header, body, h.cfg.WebhookID, h.cfg.WebhookSecret) {
		response.AuthError(c, "invalid webhook signature")
		return
	}

	var event paypal.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		response.ParamError(c, "malformed event")
		return
	}

	if err := h.paymentService.HandleWebhookEvent(c.Request.Context(), &event); err != nil {
		zap.L().Error("webhook processing failed",
			zap.String("event_id", event.ID), zap.String("event_type", event.EventType), zap.Error(err))
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"received": true})
}
