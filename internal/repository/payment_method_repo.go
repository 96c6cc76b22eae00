package repository

import (
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
)

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) WithTx(tx *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: tx}
}

func (r *PaymentMethodRepository) Create(method *model.PaymentMethod) error {
	return r.db.Create(method).Error
}

func (r *PaymentMethodRepository) GetByID(id int64) (*model.PaymentMethod, error) {
	var method model.PaymentMethod
	err := r.db.Where("id = ?", id).First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *PaymentMethodRepository) ListByUser(userID int64) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&methods).Error
	return methods, err
}

func (r *PaymentMethodRepository) Update(method *model.PaymentMethod) error {
	return r.db.Save(method).Error
}

func (r *PaymentMethodRepository) Delete(id int64) error {
	result := r.db.Delete(&model.PaymentMethod{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearPrimary unsets the primary flag on all of the user's methods. Used
// with SetPrimary inside one transaction so exactly one method stays primary.
func (r *PaymentMethodRepository) ClearPrimary(userID int64) error {
	return r.db.Model(&model.PaymentMethod{}).
		Where("user_id = ?", userID).
		Update("is_primary", false).Error
}

func (r *PaymentMethodRepository) SetPrimary(id int64) error {
	result := r.db.Model(&model.PaymentMethod{}).
		Where("id = ?", id).
		Update("is_primary", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
