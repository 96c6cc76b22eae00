package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

// GetByOrderID looks up by the provider's order ID, not the row ID.
func (r *OrderRepository) GetByOrderID(orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(order *model.Order) error {
	return r.db.Save(order).Error
}

func (r *OrderRepository) ListByUser(userID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// ListPendingOlderThan feeds the reconciliation pass: orders stuck in pending
// past the cutoff get re-checked against the provider.
func (r *OrderRepository) ListPendingOlderThan(cutoff time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("status = ? AND created_at < ?", model.OrderPending, cutoff).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}
