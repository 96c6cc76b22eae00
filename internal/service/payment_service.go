package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/paypal"
	"github.com/taskhive/taskhive-server/internal/repository"
)

// SubscriptionDuration is how long one payment keeps a subscription active.
const SubscriptionDuration = 30 * 24 * time.Hour

// ReferralBonusRate is the share of a referred user's first subscription paid
// to the referrer.
var ReferralBonusRate = decimal.NewFromFloat(0.10)

// PaymentProvider is the slice of the PayPal client the service uses.
// Narrowed to an interface so tests can substitute a stub.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, amount, currency, returnURL, cancelURL string) (*paypal.OrderResult, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error)
	GetOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error)
}

// PaymentService runs the payment-to-subscription bridge: provider orders on
// one side, subscription rows, tier assignment and the approval reset on the
// other.
type PaymentService struct {
	db            *gorm.DB
	provider      PaymentProvider
	orderRepo     *repository.OrderRepository
	subRepo       *repository.SubscriptionRepository
	userRepo      *repository.UserRepository
	walletRepo    *repository.WalletRepository
	txnRepo       *repository.TransactionRepository
	notifications *NotificationService
	catalog       *TierCatalog
	cfg           *config.PayPalConfig
}

func NewPaymentService(
	db *gorm.DB,
	provider PaymentProvider,
	orderRepo *repository.OrderRepository,
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
	txnRepo *repository.TransactionRepository,
	notifications *NotificationService,
	catalog *TierCatalog,
	cfg *config.PayPalConfig,
) *PaymentService {
	return &PaymentService{
		db:            db,
		provider:      provider,
		orderRepo:     orderRepo,
		subRepo:       subRepo,
		userRepo:      userRepo,
		walletRepo:    walletRepo,
		txnRepo:       txnRepo,
		notifications: notifications,
		catalog:       catalog,
		cfg:           cfg,
	}
}

// CreateOrder opens a provider order at the catalog price of the tier and
// records it locally as pending.
func (s *PaymentService) CreateOrder(ctx context.Context, user *model.User, tier model.Tier) (*dto.CreateOrderResponse, error) {
	price, err := s.catalog.PriceFor(tier)
	if err != nil {
		return nil, err
	}

	result, err := s.provider.CreateOrder(ctx, price.StringFixed(2), "USD", s.cfg.ReturnURL, s.cfg.CancelURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamPaymentFailure, err)
	}

	order := &model.Order{
		UserID:           user.ID,
		OrderID:          result.ID,
		Amount:           price,
		Currency:         "USD",
		Status:           model.OrderPending,
		SubscriptionTier: tier,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	zap.L().Info("payment order created",
		zap.Int64("user_id", user.ID), zap.String("order_id", result.ID), zap.String("tier", string(tier)))
	return &dto.CreateOrderResponse{OrderID: result.ID, ApprovalURL: result.ApproveURL}, nil
}

// CaptureOrder captures an approved provider order and, on success, runs the
// subscription bridge. Replaying a completed order returns AlreadyProcessed
// without touching the provider again.
func (s *PaymentService) CaptureOrder(ctx context.Context, user *model.User, orderID string) (*dto.CaptureOrderResponse, error) {
	order, err := s.orderRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, ErrNotFound
	}
	if order.Status == model.OrderCompleted {
		return nil, ErrAlreadyProcessed
	}

	capture, err := s.provider.CaptureOrder(ctx, orderID)
	if err != nil {
		s.markOrderFailed(order, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrUpstreamPaymentFailure, err)
	}
	if capture.Status != paypal.StatusCompleted {
		s.markOrderFailed(order, fmt.Sprintf("capture status %s", capture.Status))
		return nil, ErrUpstreamPaymentFailure
	}

	sub, err := s.completeOrder(order, capture)
	if err != nil {
		return nil, err
	}
	return &dto.CaptureOrderResponse{Order: order, Subscription: sub}, nil
}

// completeOrder is the bridge transaction. Exactly once per order: the order
// flips to completed, previous subscriptions deactivate, the new subscription
// row is inserted, the user's tier is set and their approval status returns
// to pending for admin review. A referred user's first subscription also pays
// the referral bonus. All of it commits or none of it does.
func (s *PaymentService) completeOrder(order *model.Order, capture *paypal.CaptureResult) (*model.Subscription, error) {
	reference := capture.CaptureID
	if reference == "" {
		reference = capture.OrderID
	}

	var (
		sub    *model.Subscription
		notifs []*model.Notification
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read under the transaction so two concurrent captures (user
		// return URL vs webhook) cannot both run the bridge.
		current, err := s.orderRepo.WithTx(tx).GetByOrderID(order.OrderID)
		if err != nil {
			return err
		}
		if current.Status == model.OrderCompleted {
			return ErrAlreadyProcessed
		}

		exists, err := s.subRepo.WithTx(tx).ExistsByPaymentReference(reference)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyProcessed
		}

		user, err := s.userRepo.WithTx(tx).GetByID(order.UserID)
		if err != nil {
			return err
		}

		firstSubscription := user.SubscriptionTier == nil

		metadata, _ := json.Marshal(map[string]string{
			"capture_id":  capture.CaptureID,
			"payer_id":    capture.PayerID,
			"payer_email": capture.PayerEmail,
		})
		current.Status = model.OrderCompleted
		current.Metadata = metadata
		if capture.PayerID != "" {
			current.PayerID = &capture.PayerID
		}
		if capture.PayerEmail != "" {
			current.PayerEmail = &capture.PayerEmail
		}
		if err := s.orderRepo.WithTx(tx).Update(current); err != nil {
			return err
		}
		*order = *current

		if err := s.subRepo.WithTx(tx).DeactivateForUser(user.ID); err != nil {
			return err
		}
		sub = &model.Subscription{
			UserID:           user.ID,
			Tier:             order.SubscriptionTier,
			Amount:           order.Amount,
			PaymentMethod:    model.PaymentMethodPayPal,
			PaymentReference: &reference,
			IsActive:         true,
			ExpiresAt:        time.Now().Add(SubscriptionDuration),
		}
		if err := s.subRepo.WithTx(tx).Create(sub); err != nil {
			return err
		}

		expiry := sub.ExpiresAt
		if err := s.userRepo.WithTx(tx).UpdateFields(user.ID, map[string]interface{}{
			"subscription_tier":   order.SubscriptionTier,
			"subscription_expiry": expiry,
			"approval_status":     model.ApprovalPending,
		}); err != nil {
			return err
		}

		desc := fmt.Sprintf("%s subscription", order.SubscriptionTier)
		if err := s.txnRepo.WithTx(tx).Create(&model.Transaction{
			UserID:      user.ID,
			Type:        model.TransactionSubscription,
			Amount:      order.Amount.Neg(),
			Status:      model.TransactionCompleted,
			Reference:   &reference,
			Description: &desc,
		}); err != nil {
			return err
		}

		paid, err := Build(user.ID, "Subscription activated",
			fmt.Sprintf("Your %s subscription is active. Your account is now awaiting admin approval.", order.SubscriptionTier),
			model.NotificationSubscription, map[string]any{"order_id": order.OrderID})
		if err != nil {
			return err
		}
		if err := s.notifications.CreateInTx(tx, paid); err != nil {
			return err
		}
		notifs = append(notifs, paid)

		if firstSubscription && user.ReferredBy != nil {
			bonus, err := s.payReferralBonus(tx, user, order.Amount, reference)
			if err != nil {
				return err
			}
			if bonus != nil {
				notifs = append(notifs, bonus)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range notifs {
		s.notifications.Push(n)
	}
	zap.L().Info("subscription activated",
		zap.Int64("user_id", order.UserID),
		zap.String("order_id", order.OrderID),
		zap.String("tier", string(order.SubscriptionTier)))
	return sub, nil
}

// payReferralBonus credits 10% of the subscription amount to the referrer.
// A missing referrer row is logged and skipped, not an error: the referred
// user's subscription must not fail over it.
func (s *PaymentService) payReferralBonus(tx *gorm.DB, user *model.User, amount decimal.Decimal, reference string) (*model.Notification, error) {
	referrer, err := s.userRepo.WithTx(tx).GetByReferralCode(*user.ReferredBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Warn("referral code no longer resolves",
				zap.Int64("user_id", user.ID), zap.String("code", *user.ReferredBy))
			return nil, nil
		}
		return nil, err
	}

	bonus := amount.Mul(ReferralBonusRate).Round(2)
	wallet, err := s.walletRepo.WithTx(tx).GetByUserForUpdate(referrer.ID)
	if err != nil {
		return nil, err
	}
	wallet.AvailableBalance = wallet.AvailableBalance.Add(bonus)
	wallet.TotalEarnings = wallet.TotalEarnings.Add(bonus)
	if err := s.walletRepo.WithTx(tx).Update(wallet); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Referral bonus for %s", user.Name)
	ref := "referral-" + reference
	if err := s.txnRepo.WithTx(tx).Create(&model.Transaction{
		UserID:      referrer.ID,
		Type:        model.TransactionReferral,
		Amount:      bonus,
		Status:      model.TransactionCompleted,
		Reference:   &ref,
		Description: &desc,
	}); err != nil {
		return nil, err
	}

	notif, err := Build(referrer.ID, "Referral bonus",
		fmt.Sprintf("You earned $%s because %s subscribed with your referral code.", bonus.StringFixed(2), user.Name),
		model.NotificationPayment, map[string]any{"referred_user_id": user.ID})
	if err != nil {
		return nil, err
	}
	if err := s.notifications.CreateInTx(tx, notif); err != nil {
		return nil, err
	}
	return notif, nil
}

func (s *PaymentService) markOrderFailed(order *model.Order, reason string) {
	metadata, _ := json.Marshal(map[string]string{"failure_reason": reason})
	order.Status = model.OrderFailed
	order.Metadata = metadata
	if err := s.orderRepo.Update(order); err != nil {
		zap.L().Error("could not mark order failed",
			zap.String("order_id", order.OrderID), zap.Error(err))
		return
	}

	if err := s.notifications.Notify(order.UserID, "Payment failed",
		"Your subscription payment did not go through. You can retry from the subscription page.",
		model.NotificationPayment, map[string]any{"order_id": order.OrderID}); err != nil {
		zap.L().Warn("payment failure notification", zap.Error(err))
	}
}

// RetryFailedPayment opens a fresh provider order for a failed local order,
// keeping the row and counting the attempt in its metadata.
func (s *PaymentService) RetryFailedPayment(ctx context.Context, user *model.User, orderID string) (*dto.CreateOrderResponse, error) {
	order, err := s.orderRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, ErrNotFound
	}
	if order.Status != model.OrderFailed {
		return nil, ErrInvalidTransition
	}

	result, err := s.provider.CreateOrder(ctx, order.Amount.StringFixed(2), order.Currency, s.cfg.ReturnURL, s.cfg.CancelURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamPaymentFailure, err)
	}

	retries := 1
	var meta map[string]any
	if len(order.Metadata) > 0 {
		if json.Unmarshal(order.Metadata, &meta) == nil {
			if n, ok := meta["retries"].(float64); ok {
				retries = int(n) + 1
			}
		}
	}
	metadata, _ := json.Marshal(map[string]any{
		"retries":           retries,
		"previous_order_id": order.OrderID,
	})

	order.OrderID = result.ID
	order.Status = model.OrderPending
	order.Metadata = metadata
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return &dto.CreateOrderResponse{OrderID: result.ID, ApprovalURL: result.ApproveURL}, nil
}

// HandleWebhookEvent dispatches a verified provider event. Events about
// orders this platform never issued are logged and dropped. Bridge replays
// surface as nil errors: the webhook must ack duplicates.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, event *paypal.WebhookEvent) error {
	switch event.EventType {
	case paypal.EventCaptureCompleted:
		var res paypal.CaptureResource
		if err := json.Unmarshal(event.Resource, &res); err != nil {
			return err
		}
		return s.bridgeFromWebhook(res.SupplementaryData.RelatedIDs.OrderID, &paypal.CaptureResult{
			OrderID:    res.SupplementaryData.RelatedIDs.OrderID,
			CaptureID:  res.ID,
			Status:     paypal.StatusCompleted,
			PayerID:    res.Payer.PayerID,
			PayerEmail: res.Payer.Email,
			Amount:     res.Amount.Value,
			Currency:   res.Amount.CurrencyCode,
		})

	case paypal.EventOrderApproved, paypal.EventOrderCompleted:
		var res paypal.OrderResource
		if err := json.Unmarshal(event.Resource, &res); err != nil {
			return err
		}
		capture, err := s.provider.GetOrder(ctx, res.ID)
		if err != nil {
			return err
		}
		if capture.Status != paypal.StatusCompleted {
			// Approved but not yet captured; the return-URL capture or the
			// reconcile pass will finish it.
			zap.L().Debug("order approved, awaiting capture", zap.String("order_id", res.ID))
			return nil
		}
		return s.bridgeFromWebhook(res.ID, capture)

	case paypal.EventCaptureDenied:
		var res paypal.CaptureResource
		if err := json.Unmarshal(event.Resource, &res); err != nil {
			return err
		}
		return s.failFromWebhook(res.SupplementaryData.RelatedIDs.OrderID, res.StatusDetails.Reason)

	case paypal.EventCaptureRefunded:
		var res paypal.CaptureResource
		if err := json.Unmarshal(event.Resource, &res); err != nil {
			return err
		}
		return s.refundOrder(res.SupplementaryData.RelatedIDs.OrderID)

	default:
		zap.L().Debug("ignoring webhook event", zap.String("event_type", event.EventType))
		return nil
	}
}

func (s *PaymentService) bridgeFromWebhook(orderID string, capture *paypal.CaptureResult) error {
	order, err := s.orderRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Warn("webhook references unknown order", zap.String("order_id", orderID))
			return nil
		}
		return err
	}
	if _, err := s.completeOrder(order, capture); err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			return nil
		}
		return err
	}
	return nil
}

func (s *PaymentService) failFromWebhook(orderID, reason string) error {
	order, err := s.orderRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if order.Status != model.OrderPending {
		return nil
	}
	if reason == "" {
		reason = "capture denied"
	}
	s.markOrderFailed(order, reason)
	return nil
}

// refundOrder rolls the subscription back: the order flips to refunded, the
// subscription bought with it deactivates and the user loses the tier.
func (s *PaymentService) refundOrder(orderID string) error {
	order, err := s.orderRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if order.Status == model.OrderRefunded {
		return nil
	}

	var notif *model.Notification
	err = s.db.Transaction(func(tx *gorm.DB) error {
		order.Status = model.OrderRefunded
		if err := s.orderRepo.WithTx(tx).Update(order); err != nil {
			return err
		}
		if err := s.subRepo.WithTx(tx).DeactivateForUser(order.UserID); err != nil {
			return err
		}
		if err := s.userRepo.WithTx(tx).UpdateFields(order.UserID, map[string]interface{}{
			"subscription_tier":   nil,
			"subscription_expiry": nil,
		}); err != nil {
			return err
		}
		notif, err = Build(order.UserID, "Payment refunded",
			"Your subscription payment was refunded and the subscription has been deactivated.",
			model.NotificationPayment, map[string]any{"order_id": order.OrderID})
		if err != nil {
			return err
		}
		return s.notifications.CreateInTx(tx, notif)
	})
	if err != nil {
		return err
	}
	s.notifications.Push(notif)
	return nil
}

// Reconcile re-checks pending orders older than the cutoff against the
// provider and settles them either way. Returns how many orders were
// completed and how many failed.
func (s *PaymentService) Reconcile(ctx context.Context, olderThan time.Duration) (completed, failed int, err error) {
	orders, err := s.orderRepo.ListPendingOlderThan(time.Now().Add(-olderThan))
	if err != nil {
		return 0, 0, err
	}

	for i := range orders {
		order := &orders[i]
		capture, err := s.provider.GetOrder(ctx, order.OrderID)
		if err != nil {
			zap.L().Warn("reconcile: provider lookup failed",
				zap.String("order_id", order.OrderID), zap.Error(err))
			continue
		}

		switch capture.Status {
		case paypal.StatusCompleted:
			if _, err := s.completeOrder(order, capture); err != nil && !errors.Is(err, ErrAlreadyProcessed) {
				zap.L().Error("reconcile: bridge failed",
					zap.String("order_id", order.OrderID), zap.Error(err))
				continue
			}
			completed++
		case "VOIDED", "EXPIRED":
			s.markOrderFailed(order, "order "+capture.Status+" at provider")
			failed++
		default:
			// Still open at the provider; leave it for the next pass.
		}
	}
	return completed, failed, nil
}

// ListOrders returns the user's payment history, newest first.
func (s *PaymentService) ListOrders(userID int64) ([]model.Order, error) {
	return s.orderRepo.ListByUser(userID)
}
