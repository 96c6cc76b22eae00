package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) Create(wallet *model.Wallet) error {
	return r.db.Create(wallet).Error
}

func (r *WalletRepository) GetByUser(userID int64) (*model.Wallet, error) {
	var wallet model.Wallet
	err := r.db.Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetByUserForUpdate locks the wallet row for the duration of the enclosing
// transaction. Credit and debit paths go through this to avoid lost updates.
func (r *WalletRepository) GetByUserForUpdate(userID int64) (*model.Wallet, error) {
	var wallet model.Wallet
	err := withRowLock(r.db).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *WalletRepository) Update(wallet *model.Wallet) error {
	return r.db.Save(wallet).Error
}

// SumTotalWithdrawn is the platform-wide paid-out total for the admin
// dashboard.
func (r *WalletRepository) SumTotalWithdrawn() (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&model.Wallet{}).
		Select("COALESCE(SUM(total_withdrawn), 0) AS total").
		Scan(&out).Error
	return out.Total, err
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

func (r *TransactionRepository) Create(txn *model.Transaction) error {
	return r.db.Create(txn).Error
}

func (r *TransactionRepository) ListByUser(userID int64) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txns).Error
	return txns, err
}
