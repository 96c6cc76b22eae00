package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order mirrors one payment-provider order. OrderID is the provider's ID.
type Order struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	UserID           int64           `gorm:"not null;index" json:"user_id"`
	OrderID          string          `gorm:"size:100;uniqueIndex;not null" json:"order_id"`
	PayerID          *string         `gorm:"size:100" json:"payer_id,omitempty"`
	PayerEmail       *string         `gorm:"size:100" json:"payer_email,omitempty"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null;default:USD" json:"currency"`
	Status           OrderStatus     `gorm:"size:10;not null;default:pending;index" json:"status"`
	SubscriptionTier Tier            `gorm:"size:10;not null" json:"subscription_tier"`
	Metadata         datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
