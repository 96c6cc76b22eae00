package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser creates a user with an empty wallet. Defaults model a freshly
// registered account: pending approval, orientation not started, no tier.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	user := &model.User{
		Name:              fmt.Sprintf("Test User %d", n),
		Email:             fmt.Sprintf("test_%d@example.com", n),
		PasswordHash:      "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Gender:            model.GenderGeek,
		Role:              model.RoleUser,
		ReferralCode:      fmt.Sprintf("REF%05d", n),
		IsActive:          true,
		ApprovalStatus:    model.ApprovalPending,
		OrientationStatus: datatypes.NewJSONType(model.NewOrientationStatus()),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	if err := db.Create(&model.Wallet{UserID: user.ID}).Error; err != nil {
		t.Fatalf("Failed to create test wallet: %v", err)
	}

	return user
}

// WithTier sets the subscription tier.
func WithTier(tier model.Tier) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionTier = &tier
		expiry := time.Now().Add(30 * 24 * time.Hour)
		u.SubscriptionExpiry = &expiry
	}
}

// WithApproval sets the approval status.
func WithApproval(status model.ApprovalStatus) func(*model.User) {
	return func(u *model.User) {
		u.ApprovalStatus = status
	}
}

// WithRole sets the role.
func WithRole(role model.Role) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithReferredBy sets the referrer's code.
func WithReferredBy(code string) func(*model.User) {
	return func(u *model.User) {
		u.ReferredBy = &code
	}
}

// WithOrientationDone marks every orientation category complete.
func WithOrientationDone() func(*model.User) {
	return func(u *model.User) {
		status := model.NewOrientationStatus()
		var id int64
		for _, cat := range model.Categories {
			for i := 0; i < model.OrientationCategoryThreshold; i++ {
				id++
				status = status.RecordCompletion(cat, 1000+id)
			}
		}
		u.OrientationStatus = datatypes.NewJSONType(status)
	}
}

// ApprovedMember is shorthand for a fully admitted user on the given tier.
func ApprovedMember(t *testing.T, db *gorm.DB, tier model.Tier, opts ...func(*model.User)) *model.User {
	t.Helper()
	base := []func(*model.User){
		WithOrientationDone(),
		WithTier(tier),
		WithApproval(model.ApprovalApproved),
	}
	return TestUser(t, db, append(base, opts...)...)
}

// TestTask creates an active catalog task.
func TestTask(t *testing.T, db *gorm.DB, opts ...func(*model.Task)) *model.Task {
	t.Helper()

	task := &model.Task{
		Title:       fmt.Sprintf("Test Task %d", next()),
		Description: "A task for testing",
		Category:    model.CategoryMain,
		Reward:      decimal.NewFromFloat(1.50),
		MinTier:     model.TierMember,
		MinDuration: 150,
		IsActive:    true,
	}

	for _, opt := range opts {
		opt(task)
	}

	// GORM skips zero-valued fields with a default tag on Create and then
	// backfills the struct from the database, so an Inactive() task would
	// otherwise be stored (and reported) with is_active = true.
	isActive := task.IsActive
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create test task: %v", err)
	}
	if !isActive {
		if err := db.Model(task).UpdateColumn("is_active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate test task: %v", err)
		}
		task.IsActive = false
	}

	return task
}

// WithCategory sets the task category.
func WithCategory(category model.Category) func(*model.Task) {
	return func(task *model.Task) {
		task.Category = category
	}
}

// WithMinTier gates the task at a tier.
func WithMinTier(tier model.Tier) func(*model.Task) {
	return func(task *model.Task) {
		task.MinTier = tier
	}
}

// WithReward sets the task reward.
func WithReward(amount string) func(*model.Task) {
	return func(task *model.Task) {
		task.Reward = decimal.RequireFromString(amount)
	}
}

// AsOrientation marks the task as part of the onboarding set.
func AsOrientation() func(*model.Task) {
	return func(task *model.Task) {
		task.IsOrientation = true
	}
}

// Inactive deactivates the task.
func Inactive() func(*model.Task) {
	return func(task *model.Task) {
		task.IsActive = false
	}
}

// TestUserTask creates an attempt row.
func TestUserTask(t *testing.T, db *gorm.DB, userID, taskID int64, opts ...func(*model.UserTask)) *model.UserTask {
	t.Helper()

	userTask := &model.UserTask{
		UserID:    userID,
		TaskID:    taskID,
		Status:    model.TaskStatusPending,
		StartedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(userTask)
	}

	if err := db.Create(userTask).Error; err != nil {
		t.Fatalf("Failed to create test user task: %v", err)
	}

	return userTask
}

// WithTaskStatus sets the attempt status.
func WithTaskStatus(status model.TaskStatus) func(*model.UserTask) {
	return func(ut *model.UserTask) {
		ut.Status = status
	}
}

// WithStartedAt backdates the attempt.
func WithStartedAt(at time.Time) func(*model.UserTask) {
	return func(ut *model.UserTask) {
		ut.StartedAt = at
	}
}

// TestOrder creates a pending payment order.
func TestOrder(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Order)) *model.Order {
	t.Helper()

	order := &model.Order{
		UserID:           userID,
		OrderID:          fmt.Sprintf("PAYPAL-ORDER-%d", next()),
		Amount:           decimal.RequireFromString("10.00"),
		Currency:         "USD",
		Status:           model.OrderPending,
		SubscriptionTier: model.TierSilver,
	}

	for _, opt := range opts {
		opt(order)
	}

	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}

	return order
}

// WithOrderStatus sets the order status.
func WithOrderStatus(status model.OrderStatus) func(*model.Order) {
	return func(o *model.Order) {
		o.Status = status
	}
}

// WithOrderTier sets the tier the order buys.
func WithOrderTier(tier model.Tier, price string) func(*model.Order) {
	return func(o *model.Order) {
		o.SubscriptionTier = tier
		o.Amount = decimal.RequireFromString(price)
	}
}

// FundWallet puts an available balance on the user's wallet.
func FundWallet(t *testing.T, db *gorm.DB, userID int64, amount string) {
	t.Helper()

	value := decimal.RequireFromString(amount)
	err := db.Model(&model.Wallet{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"available_balance": value,
			"total_earnings":    value,
		}).Error
	if err != nil {
		t.Fatalf("Failed to fund test wallet: %v", err)
	}
}

// TestPaymentMethod creates an active payout method.
func TestPaymentMethod(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.PaymentMethod)) *model.PaymentMethod {
	t.Helper()

	method := &model.PaymentMethod{
		UserID:    userID,
		Type:      model.PaymentMethodPayPal,
		Email:     fmt.Sprintf("payout_%d@example.com", next()),
		IsPrimary: false,
		IsActive:  true,
	}

	for _, opt := range opts {
		opt(method)
	}

	if err := db.Create(method).Error; err != nil {
		t.Fatalf("Failed to create test payment method: %v", err)
	}

	return method
}

// AsPrimary marks the method primary.
func AsPrimary() func(*model.PaymentMethod) {
	return func(m *model.PaymentMethod) {
		m.IsPrimary = true
	}
}
