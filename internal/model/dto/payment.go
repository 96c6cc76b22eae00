package dto

import "github.com/taskhive/taskhive-server/internal/model"

type CreateOrderRequest struct {
	Tier model.Tier `json:"tier" binding:"required,oneof=member silver bronze diamond gold vip"`
}

type CreateOrderResponse struct {
	OrderID     string `json:"order_id"`
	ApprovalURL string `json:"approval_url"`
}

type CaptureOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type CaptureOrderResponse struct {
	Order        *model.Order        `json:"order"`
	Subscription *model.Subscription `json:"subscription"`
}

type RetryPaymentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}
