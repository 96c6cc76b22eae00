package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) WithTx(tx *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: tx}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

// GetActiveByUser returns the user's current subscription, if any.
func (r *SubscriptionRepository) GetActiveByUser(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, time.Now()).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeactivateForUser retires any active rows before a new subscription is
// inserted, so at most one row is active per user.
func (r *SubscriptionRepository) DeactivateForUser(userID int64) error {
	return r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

func (r *SubscriptionRepository) ExistsByPaymentReference(reference string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("payment_reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

func (r *SubscriptionRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("is_active = ? AND expires_at > ?", true, time.Now()).
		Count(&count).Error
	return count, err
}
