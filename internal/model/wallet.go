package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Wallet struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	UserID           int64           `gorm:"not null;uniqueIndex" json:"user_id"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"available_balance"`
	PendingBalance   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"pending_balance"`
	TotalEarnings    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_earnings"`
	TotalWithdrawn   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_withdrawn"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

type Transaction struct {
	ID          int64             `gorm:"primaryKey" json:"id"`
	UserID      int64             `gorm:"not null;index" json:"user_id"`
	Type        TransactionType   `gorm:"size:15;not null" json:"type"`
	Amount      decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status      TransactionStatus `gorm:"size:10;not null;default:pending" json:"status"`
	Reference   *string           `gorm:"size:100" json:"reference,omitempty"`
	Description *string           `gorm:"type:text" json:"description,omitempty"`
	Metadata    datatypes.JSON    `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

type Withdrawal struct {
	ID              int64             `gorm:"primaryKey" json:"id"`
	UserID          int64             `gorm:"not null;index" json:"user_id"`
	Amount          decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethodID *int64            `json:"payment_method_id,omitempty"`
	Status          TransactionStatus `gorm:"size:10;not null;default:pending;index" json:"status"`
	AdminNotes      *string           `gorm:"type:text" json:"admin_notes,omitempty"`
	ProcessedAt     *time.Time        `json:"processed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
