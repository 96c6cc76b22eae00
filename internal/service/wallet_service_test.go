package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/testutil"
)

func setupWalletService(t *testing.T) (*WalletService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	userRepo := repository.NewUserRepository(db)
	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), userRepo, nil, nil)

	service := NewWalletService(
		db,
		repository.NewWalletRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewWithdrawalRepository(db),
		repository.NewPaymentMethodRepository(db),
		notifications,
	)
	return service, db
}

func TestWalletService_RequestWithdrawal_PlacesHold(t *testing.T) {
	service, db := setupWalletService(t)

	user := testutil.ApprovedMember(t, db, model.TierSilver)
	testutil.FundWallet(t, db, user.ID, "40.00")

	withdrawal, err := service.RequestWithdrawal(user, &dto.WithdrawRequest{
		Amount: decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionPending, withdrawal.Status)

	wallet, err := service.GetWallet(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "15", wallet.AvailableBalance.String())
	assert.Equal(t, "25", wallet.PendingBalance.String())
}

func TestWalletService_RequestWithdrawal_InsufficientBalance(t *testing.T) {
	service, db := setupWalletService(t)

	user := testutil.ApprovedMember(t, db, model.TierSilver)
	testutil.FundWallet(t, db, user.ID, "10.00")

	_, err := service.RequestWithdrawal(user, &dto.WithdrawRequest{
		Amount: decimal.RequireFromString("10.01"),
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = service.RequestWithdrawal(user, &dto.WithdrawRequest{
		Amount: decimal.RequireFromString("-5.00"),
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// the hold never moved anything
	wallet, err := service.GetWallet(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", wallet.AvailableBalance.String())
	assert.True(t, wallet.PendingBalance.IsZero())
}

func TestWalletService_RequestWithdrawal_ForeignPaymentMethod(t *testing.T) {
	service, db := setupWalletService(t)

	user := testutil.ApprovedMember(t, db, model.TierSilver)
	testutil.FundWallet(t, db, user.ID, "40.00")
	stranger := testutil.TestUser(t, db)
	method := testutil.TestPaymentMethod(t, db, stranger.ID)

	_, err := service.RequestWithdrawal(user, &dto.WithdrawRequest{
		Amount:          decimal.RequireFromString("5.00"),
		PaymentMethodID: &method.ID,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWalletService_AddPaymentMethod_FirstBecomesPrimary(t *testing.T) {
	service, db := setupWalletService(t)

	user := testutil.ApprovedMember(t, db, model.TierSilver)

	first, err := service.AddPaymentMethod(user.ID, &dto.AddPaymentMethodRequest{
		Type:  model.PaymentMethodPayPal,
		Email: "payout@example.com",
	})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)

	second, err := service.AddPaymentMethod(user.ID, &dto.AddPaymentMethodRequest{
		Type:  model.PaymentMethodPayPal,
		Email: "backup@example.com",
	})
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)
}

func TestWalletService_SetPrimaryDisplacesCurrent(t *testing.T) {
	service, db := setupWalletService(t)

	user := testutil.ApprovedMember(t, db, model.TierSilver)
	first := testutil.TestPaymentMethod(t, db, user.ID, testutil.AsPrimary())
	second := testutil.TestPaymentMethod(t, db, user.ID)

	require.NoError(t, service.SetPrimaryPaymentMethod(user.ID, second.ID))

	methods, err := service.ListPaymentMethods(user.ID)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	for _, m := range methods {
		switch m.ID {
		case first.ID:
			assert.False(t, m.IsPrimary)
		case second.ID:
			assert.True(t, m.IsPrimary)
		}
	}
}

func TestWalletService_SetPrimary_ForeignMethod(t *testing.T) {
	service, db := setupWalletService(t)

	user := testutil.ApprovedMember(t, db, model.TierSilver)
	stranger := testutil.TestUser(t, db)
	method := testutil.TestPaymentMethod(t, db, stranger.ID)

	err := service.SetPrimaryPaymentMethod(user.ID, method.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWalletService_DeletePaymentMethod(t *testing.T) {
	service, db := setupWalletService(t)

	user := testutil.ApprovedMember(t, db, model.TierSilver)
	method := testutil.TestPaymentMethod(t, db, user.ID)

	require.NoError(t, service.DeletePaymentMethod(user.ID, method.ID))

	methods, err := service.ListPaymentMethods(user.ID)
	require.NoError(t, err)
	assert.Empty(t, methods)

	err = service.DeletePaymentMethod(user.ID, method.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
