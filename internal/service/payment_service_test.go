package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/pkg/paypal"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/testutil"
)

// stubProvider fakes the PayPal client. Captures succeed unless failNext is
// set; GetOrder returns whatever orderStates holds.
type stubProvider struct {
	created     int
	failNext    bool
	orderStates map[string]string
}

func (p *stubProvider) CreateOrder(_ context.Context, amount, currency, _, _ string) (*paypal.OrderResult, error) {
	p.created++
	id := fmt.Sprintf("STUB-ORDER-%d", p.created)
	return &paypal.OrderResult{ID: id, Status: "CREATED", ApproveURL: "https://paypal.test/approve/" + id}, nil
}

func (p *stubProvider) CaptureOrder(_ context.Context, orderID string) (*paypal.CaptureResult, error) {
	if p.failNext {
		p.failNext = false
		return &paypal.CaptureResult{OrderID: orderID, Status: "DECLINED"}, nil
	}
	return &paypal.CaptureResult{
		OrderID:    orderID,
		CaptureID:  "CAP-" + orderID,
		Status:     paypal.StatusCompleted,
		PayerID:    "PAYER123",
		PayerEmail: "payer@example.com",
	}, nil
}

func (p *stubProvider) GetOrder(_ context.Context, orderID string) (*paypal.CaptureResult, error) {
	status := p.orderStates[orderID]
	if status == "" {
		status = "CREATED"
	}
	result := &paypal.CaptureResult{OrderID: orderID, Status: status}
	if status == paypal.StatusCompleted {
		result.CaptureID = "CAP-" + orderID
	}
	return result, nil
}

func setupPaymentService(t *testing.T) (*PaymentService, *stubProvider, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	userRepo := repository.NewUserRepository(db)
	provider := &stubProvider{orderStates: map[string]string{}}
	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), userRepo, nil, nil)

	service := NewPaymentService(
		db,
		provider,
		repository.NewOrderRepository(db),
		repository.NewSubscriptionRepository(db),
		userRepo,
		repository.NewWalletRepository(db),
		repository.NewTransactionRepository(db),
		notifications,
		DefaultTierCatalog(),
		&config.PayPalConfig{ReturnURL: "http://localhost/success", CancelURL: "http://localhost/cancel"},
	)
	return service, provider, db
}

func TestPaymentService_CreateOrder_UsesCatalogPrice(t *testing.T) {
	service, _, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())

	resp, err := service.CreateOrder(context.Background(), user, model.TierDiamond)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ApprovalURL)

	order, err := repository.NewOrderRepository(db).GetByOrderID(resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, model.TierDiamond, order.SubscriptionTier)
	assert.Equal(t, "50", order.Amount.String())
}

func TestPaymentService_CreateOrder_UnknownTier(t *testing.T) {
	service, _, db := setupPaymentService(t)

	user := testutil.TestUser(t, db)
	_, err := service.CreateOrder(context.Background(), user, model.Tier("platinum"))
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestPaymentService_CaptureOrder_RunsBridge(t *testing.T) {
	service, _, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())
	created, err := service.CreateOrder(context.Background(), user, model.TierGold)
	require.NoError(t, err)

	resp, err := service.CaptureOrder(context.Background(), user, created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, resp.Order.Status)
	assert.Equal(t, model.TierGold, resp.Subscription.Tier)
	assert.WithinDuration(t, time.Now().Add(SubscriptionDuration), resp.Subscription.ExpiresAt, time.Minute)

	stored := reloadUser(t, db, user.ID)
	require.NotNil(t, stored.SubscriptionTier)
	assert.Equal(t, model.TierGold, *stored.SubscriptionTier)
	// payment puts the account back in the admin review queue
	assert.Equal(t, model.ApprovalPending, stored.ApprovalStatus)

	txns, err := repository.NewTransactionRepository(db).ListByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TransactionSubscription, txns[0].Type)
	assert.Equal(t, "-75", txns[0].Amount.String())
}

func TestPaymentService_CaptureOrder_ReplayIsRefused(t *testing.T) {
	service, _, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())
	created, err := service.CreateOrder(context.Background(), user, model.TierSilver)
	require.NoError(t, err)

	_, err = service.CaptureOrder(context.Background(), user, created.OrderID)
	require.NoError(t, err)

	_, err = service.CaptureOrder(context.Background(), user, created.OrderID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	var count int64
	require.NoError(t, db.Model(&model.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPaymentService_CaptureOrder_DeclinedMarksOrderFailed(t *testing.T) {
	service, provider, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())
	created, err := service.CreateOrder(context.Background(), user, model.TierSilver)
	require.NoError(t, err)

	provider.failNext = true
	_, err = service.CaptureOrder(context.Background(), user, created.OrderID)
	assert.ErrorIs(t, err, ErrUpstreamPaymentFailure)

	order, err := repository.NewOrderRepository(db).GetByOrderID(created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, order.Status)

	// tier untouched
	stored := reloadUser(t, db, user.ID)
	assert.Nil(t, stored.SubscriptionTier)
	// failure notification recorded
	assert.EqualValues(t, 1, notificationCount(t, db, user.ID))
}

func TestPaymentService_CaptureOrder_WrongUser(t *testing.T) {
	service, _, db := setupPaymentService(t)

	owner := testutil.TestUser(t, db, testutil.WithOrientationDone())
	created, err := service.CreateOrder(context.Background(), owner, model.TierSilver)
	require.NoError(t, err)

	other := testutil.TestUser(t, db)
	_, err = service.CaptureOrder(context.Background(), other, created.OrderID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentService_NewSubscriptionDeactivatesPrevious(t *testing.T) {
	service, _, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())

	first, err := service.CreateOrder(context.Background(), user, model.TierMember)
	require.NoError(t, err)
	_, err = service.CaptureOrder(context.Background(), reloadUser(t, db, user.ID), first.OrderID)
	require.NoError(t, err)

	second, err := service.CreateOrder(context.Background(), user, model.TierVIP)
	require.NoError(t, err)
	_, err = service.CaptureOrder(context.Background(), reloadUser(t, db, user.ID), second.OrderID)
	require.NoError(t, err)

	var active int64
	require.NoError(t, db.Model(&model.Subscription{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).Count(&active).Error)
	assert.EqualValues(t, 1, active)

	stored := reloadUser(t, db, user.ID)
	require.NotNil(t, stored.SubscriptionTier)
	assert.Equal(t, model.TierVIP, *stored.SubscriptionTier)
}

func TestPaymentService_ReferralBonusOnFirstSubscription(t *testing.T) {
	service, _, db := setupPaymentService(t)

	referrer := testutil.TestUser(t, db)
	referred := testutil.TestUser(t, db,
		testutil.WithOrientationDone(), testutil.WithReferredBy(referrer.ReferralCode))

	created, err := service.CreateOrder(context.Background(), referred, model.TierVIP)
	require.NoError(t, err)
	_, err = service.CaptureOrder(context.Background(), referred, created.OrderID)
	require.NoError(t, err)

	wallet, err := repository.NewWalletRepository(db).GetByUser(referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", wallet.AvailableBalance.String()) // 10% of $100

	txns, err := repository.NewTransactionRepository(db).ListByUser(referrer.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TransactionReferral, txns[0].Type)

	// a renewal pays no second bonus
	renewal, err := service.CreateOrder(context.Background(), referred, model.TierVIP)
	require.NoError(t, err)
	_, err = service.CaptureOrder(context.Background(), reloadUser(t, db, referred.ID), renewal.OrderID)
	require.NoError(t, err)

	wallet, err = repository.NewWalletRepository(db).GetByUser(referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", wallet.AvailableBalance.String())
}

func TestPaymentService_WebhookCaptureCompleted(t *testing.T) {
	service, _, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())
	created, err := service.CreateOrder(context.Background(), user, model.TierBronze)
	require.NoError(t, err)

	resource, err := json.Marshal(map[string]any{
		"id":     "CAP-1",
		"status": "COMPLETED",
		"supplementary_data": map[string]any{
			"related_ids": map[string]any{"order_id": created.OrderID},
		},
	})
	require.NoError(t, err)

	err = service.HandleWebhookEvent(context.Background(), &paypal.WebhookEvent{
		EventType: paypal.EventCaptureCompleted,
		Resource:  resource,
	})
	require.NoError(t, err)

	order, err := repository.NewOrderRepository(db).GetByOrderID(created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, order.Status)

	// duplicate delivery acks without a second bridge run
	err = service.HandleWebhookEvent(context.Background(), &paypal.WebhookEvent{
		EventType: paypal.EventCaptureCompleted,
		Resource:  resource,
	})
	assert.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPaymentService_WebhookUnknownOrderIsDropped(t *testing.T) {
	service, _, _ := setupPaymentService(t)

	resource, _ := json.Marshal(map[string]any{
		"id": "CAP-X",
		"supplementary_data": map[string]any{
			"related_ids": map[string]any{"order_id": "NEVER-ISSUED"},
		},
	})
	err := service.HandleWebhookEvent(context.Background(), &paypal.WebhookEvent{
		EventType: paypal.EventCaptureCompleted,
		Resource:  resource,
	})
	assert.NoError(t, err)
}

func TestPaymentService_WebhookRefundRollsBackSubscription(t *testing.T) {
	service, _, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())
	created, err := service.CreateOrder(context.Background(), user, model.TierSilver)
	require.NoError(t, err)
	_, err = service.CaptureOrder(context.Background(), user, created.OrderID)
	require.NoError(t, err)

	resource, _ := json.Marshal(map[string]any{
		"id": "CAP-R",
		"supplementary_data": map[string]any{
			"related_ids": map[string]any{"order_id": created.OrderID},
		},
	})
	err = service.HandleWebhookEvent(context.Background(), &paypal.WebhookEvent{
		EventType: paypal.EventCaptureRefunded,
		Resource:  resource,
	})
	require.NoError(t, err)

	order, err := repository.NewOrderRepository(db).GetByOrderID(created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderRefunded, order.Status)

	stored := reloadUser(t, db, user.ID)
	assert.Nil(t, stored.SubscriptionTier)

	var active int64
	require.NoError(t, db.Model(&model.Subscription{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).Count(&active).Error)
	assert.Zero(t, active)
}

func TestPaymentService_RetryFailedPayment(t *testing.T) {
	service, provider, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())
	created, err := service.CreateOrder(context.Background(), user, model.TierSilver)
	require.NoError(t, err)

	provider.failNext = true
	_, err = service.CaptureOrder(context.Background(), user, created.OrderID)
	require.ErrorIs(t, err, ErrUpstreamPaymentFailure)

	retried, err := service.RetryFailedPayment(context.Background(), user, created.OrderID)
	require.NoError(t, err)
	assert.NotEqual(t, created.OrderID, retried.OrderID)

	order, err := repository.NewOrderRepository(db).GetByOrderID(retried.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.Status)

	// retrying a pending order is refused
	_, err = service.RetryFailedPayment(context.Background(), user, retried.OrderID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPaymentService_Reconcile(t *testing.T) {
	service, provider, db := setupPaymentService(t)

	user := testutil.TestUser(t, db, testutil.WithOrientationDone())

	stale := testutil.TestOrder(t, db, user.ID)
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().Add(-2*time.Hour)).Error)
	provider.orderStates[stale.OrderID] = paypal.StatusCompleted

	dead := testutil.TestOrder(t, db, user.ID)
	require.NoError(t, db.Model(dead).Update("created_at", time.Now().Add(-2*time.Hour)).Error)
	provider.orderStates[dead.OrderID] = "EXPIRED"

	fresh := testutil.TestOrder(t, db, user.ID) // too recent, untouched

	completed, failed, err := service.Reconcile(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)

	orderRepo := repository.NewOrderRepository(db)
	settled, err := orderRepo.GetByOrderID(stale.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, settled.Status)

	expired, err := orderRepo.GetByOrderID(dead.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, expired.Status)

	untouched, err := orderRepo.GetByOrderID(fresh.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, untouched.Status)
}
