package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Subscription struct {
	ID               int64             `gorm:"primaryKey" json:"id"`
	UserID           int64             `gorm:"not null;index" json:"user_id"`
	Tier             Tier              `gorm:"size:10;not null" json:"tier"`
	Amount           decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod    PaymentMethodType `gorm:"size:10;not null;default:paypal" json:"payment_method"`
	PaymentReference *string           `gorm:"size:100" json:"payment_reference,omitempty"`
	IsActive         bool              `gorm:"not null;default:true;index" json:"is_active"`
	ExpiresAt        time.Time         `gorm:"not null" json:"expires_at"`
	CreatedAt        time.Time         `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
