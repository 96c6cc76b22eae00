package dto

import (
	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-server/internal/model"
)

type WithdrawRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethodID *int64          `json:"payment_method_id"`
}

type AddPaymentMethodRequest struct {
	Type      model.PaymentMethodType `json:"type" binding:"required,oneof=paypal"`
	Email     string                  `json:"email" binding:"required,email,max=100"`
	IsPrimary bool                    `json:"is_primary"`
}

type WalletResponse struct {
	Wallet       *model.Wallet       `json:"wallet"`
	Transactions []model.Transaction `json:"transactions"`
}
