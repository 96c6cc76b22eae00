package model

import "time"

// PaymentMethod is a payout destination. At most one per user is primary.
type PaymentMethod struct {
	ID        int64             `gorm:"primaryKey" json:"id"`
	UserID    int64             `gorm:"not null;index" json:"user_id"`
	Type      PaymentMethodType `gorm:"size:10;not null;default:paypal" json:"type"`
	Email     string            `gorm:"size:100;not null" json:"email"`
	IsPrimary bool              `gorm:"not null;default:false" json:"is_primary"`
	IsActive  bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
