package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/repository"
)

// WalletService exposes balances, transaction history, withdrawal requests
// and payout methods.
type WalletService struct {
	db             *gorm.DB
	walletRepo     *repository.WalletRepository
	txnRepo        *repository.TransactionRepository
	withdrawalRepo *repository.WithdrawalRepository
	methodRepo     *repository.PaymentMethodRepository
	notifications  *NotificationService
}

func NewWalletService(
	db *gorm.DB,
	walletRepo *repository.WalletRepository,
	txnRepo *repository.TransactionRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	methodRepo *repository.PaymentMethodRepository,
	notifications *NotificationService,
) *WalletService {
	return &WalletService{
		db:             db,
		walletRepo:     walletRepo,
		txnRepo:        txnRepo,
		withdrawalRepo: withdrawalRepo,
		methodRepo:     methodRepo,
		notifications:  notifications,
	}
}

func (s *WalletService) GetWallet(userID int64) (*model.Wallet, error) {
	wallet, err := s.walletRepo.GetByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return wallet, nil
}

func (s *WalletService) ListTransactions(userID int64) ([]model.Transaction, error) {
	return s.txnRepo.ListByUser(userID)
}

func (s *WalletService) ListWithdrawals(userID int64) ([]model.Withdrawal, error) {
	return s.withdrawalRepo.ListByUser(userID)
}

// RequestWithdrawal places a hold: the amount leaves the available balance
// and sits in the pending balance until an admin settles the request. The
// hold and the request row commit together, with the wallet row locked so
// two concurrent requests cannot both pass the balance check.
func (s *WalletService) RequestWithdrawal(user *model.User, req *dto.WithdrawRequest) (*model.Withdrawal, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInsufficientBalance
	}

	if req.PaymentMethodID != nil {
		method, err := s.methodRepo.GetByID(*req.PaymentMethodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if method.UserID != user.ID || !method.IsActive {
			return nil, ErrNotFound
		}
	}

	withdrawal := &model.Withdrawal{
		UserID:          user.ID,
		Amount:          req.Amount,
		PaymentMethodID: req.PaymentMethodID,
		Status:          model.TransactionPending,
	}

	var notif *model.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := s.walletRepo.WithTx(tx).GetByUserForUpdate(user.ID)
		if err != nil {
			return err
		}
		if wallet.AvailableBalance.LessThan(req.Amount) {
			return ErrInsufficientBalance
		}

		wallet.AvailableBalance = wallet.AvailableBalance.Sub(req.Amount)
		wallet.PendingBalance = wallet.PendingBalance.Add(req.Amount)
		if err := s.walletRepo.WithTx(tx).Update(wallet); err != nil {
			return err
		}

		if err := s.withdrawalRepo.WithTx(tx).Create(withdrawal); err != nil {
			return err
		}

		notif, err = Build(user.ID, "Withdrawal requested",
			fmt.Sprintf("Your withdrawal request of $%s was received and is pending review.", req.Amount.StringFixed(2)),
			model.NotificationPayment, map[string]any{"withdrawal_id": withdrawal.ID})
		if err != nil {
			return err
		}
		return s.notifications.CreateInTx(tx, notif)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Push(notif)
	return withdrawal, nil
}

func (s *WalletService) ListPaymentMethods(userID int64) ([]model.PaymentMethod, error) {
	return s.methodRepo.ListByUser(userID)
}

// AddPaymentMethod stores a payout destination. The first method a user adds
// becomes primary; an explicit primary flag displaces the current one.
func (s *WalletService) AddPaymentMethod(userID int64, req *dto.AddPaymentMethodRequest) (*model.PaymentMethod, error) {
	existing, err := s.methodRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	method := &model.PaymentMethod{
		UserID:    userID,
		Type:      req.Type,
		Email:     req.Email,
		IsPrimary: req.IsPrimary || len(existing) == 0,
		IsActive:  true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if method.IsPrimary {
			if err := s.methodRepo.WithTx(tx).ClearPrimary(userID); err != nil {
				return err
			}
		}
		return s.methodRepo.WithTx(tx).Create(method)
	})
	if err != nil {
		return nil, err
	}
	return method, nil
}

// SetPrimaryPaymentMethod makes the method primary, demoting whichever held
// the flag, in one transaction.
func (s *WalletService) SetPrimaryPaymentMethod(userID, methodID int64) error {
	method, err := s.methodRepo.GetByID(methodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if method.UserID != userID || !method.IsActive {
		return ErrNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.methodRepo.WithTx(tx).ClearPrimary(userID); err != nil {
			return err
		}
		return s.methodRepo.WithTx(tx).SetPrimary(methodID)
	})
}

func (s *WalletService) DeletePaymentMethod(userID, methodID int64) error {
	method, err := s.methodRepo.GetByID(methodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if method.UserID != userID {
		return ErrNotFound
	}
	return s.methodRepo.Delete(methodID)
}
