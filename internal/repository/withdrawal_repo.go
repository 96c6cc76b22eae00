package repository

import (
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) WithTx(tx *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: tx}
}

func (r *WithdrawalRepository) Create(withdrawal *model.Withdrawal) error {
	return r.db.Create(withdrawal).Error
}

func (r *WithdrawalRepository) GetByID(id int64) (*model.Withdrawal, error) {
	var withdrawal model.Withdrawal
	err := r.db.Where("id = ?", id).First(&withdrawal).Error
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *WithdrawalRepository) ListByUser(userID int64) ([]model.Withdrawal, error) {
	var withdrawals []model.Withdrawal
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&withdrawals).Error
	return withdrawals, err
}

func (r *WithdrawalRepository) ListAll() ([]model.Withdrawal, error) {
	var withdrawals []model.Withdrawal
	err := r.db.Order("created_at DESC").Find(&withdrawals).Error
	return withdrawals, err
}

func (r *WithdrawalRepository) Update(withdrawal *model.Withdrawal) error {
	return r.db.Save(withdrawal).Error
}

func (r *WithdrawalRepository) CountByStatus(status model.TransactionStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Withdrawal{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
