package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/repository"
)

// ApprovalService runs the admin review queues: user admission, submitted
// task attempts, and withdrawal requests. Every transition is idempotent
// (replaying the same target succeeds without side effects, a conflicting
// target is refused) and produces exactly one notification.
type ApprovalService struct {
	db             *gorm.DB
	userRepo       *repository.UserRepository
	userTaskRepo   *repository.UserTaskRepository
	walletRepo     *repository.WalletRepository
	txnRepo        *repository.TransactionRepository
	withdrawalRepo *repository.WithdrawalRepository
	notifications  *NotificationService
}

func NewApprovalService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	userTaskRepo *repository.UserTaskRepository,
	walletRepo *repository.WalletRepository,
	txnRepo *repository.TransactionRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	notifications *NotificationService,
) *ApprovalService {
	return &ApprovalService{
		db:             db,
		userRepo:       userRepo,
		userTaskRepo:   userTaskRepo,
		walletRepo:     walletRepo,
		txnRepo:        txnRepo,
		withdrawalRepo: withdrawalRepo,
		notifications:  notifications,
	}
}

// ApproveUser admits a paid user onto the platform.
func (s *ApprovalService) ApproveUser(userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch user.ApprovalStatus {
	case model.ApprovalApproved:
		return user, nil // replay
	case model.ApprovalRejected:
		return nil, ErrInvalidTransition
	}

	var notif *model.Notification
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).UpdateFields(userID, map[string]interface{}{
			"approval_status":  model.ApprovalApproved,
			"rejection_reason": nil,
		}); err != nil {
			return err
		}
		notif, err = Build(userID, "Account approved",
			"Your account has been approved. Welcome aboard!",
			model.NotificationSystem, nil)
		if err != nil {
			return err
		}
		return s.notifications.CreateInTx(tx, notif)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Push(notif)

	user.ApprovalStatus = model.ApprovalApproved
	user.RejectionReason = nil
	return user, nil
}

// RejectUser turns the user away and keeps the reason on the row so the
// client can show it on later logins.
func (s *ApprovalService) RejectUser(userID int64, reason string) (*model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch user.ApprovalStatus {
	case model.ApprovalRejected:
		return user, nil // replay, original reason stands
	case model.ApprovalApproved:
		return nil, ErrInvalidTransition
	}

	var notif *model.Notification
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).UpdateFields(userID, map[string]interface{}{
			"approval_status":  model.ApprovalRejected,
			"rejection_reason": reason,
		}); err != nil {
			return err
		}
		notif, err = Build(userID, "Account not approved",
			fmt.Sprintf("Your account was not approved: %s", reason),
			model.NotificationSystem, nil)
		if err != nil {
			return err
		}
		return s.notifications.CreateInTx(tx, notif)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Push(notif)

	user.ApprovalStatus = model.ApprovalRejected
	user.RejectionReason = &reason
	return user, nil
}

// ApproveUserTask accepts a submitted attempt and pays the task reward. The
// status flip, the wallet credit and the earning transaction commit together.
func (s *ApprovalService) ApproveUserTask(userTaskID int64) (*model.UserTask, error) {
	userTask, err := s.userTaskRepo.GetByID(userTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch userTask.Status {
	case model.TaskStatusApproved:
		return userTask, nil // replay, reward already paid
	case model.TaskStatusRejected:
		return nil, ErrInvalidTransition
	}
	if userTask.Task == nil {
		return nil, ErrNotFound
	}

	reward := userTask.Task.Reward
	now := time.Now()

	var notif *model.Notification
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userTaskRepo.WithTx(tx).UpdateFields(userTaskID, map[string]interface{}{
			"status":      model.TaskStatusApproved,
			"approved_at": now,
		}); err != nil {
			return err
		}

		wallet, err := s.walletRepo.WithTx(tx).GetByUserForUpdate(userTask.UserID)
		if err != nil {
			return err
		}
		wallet.AvailableBalance = wallet.AvailableBalance.Add(reward)
		wallet.TotalEarnings = wallet.TotalEarnings.Add(reward)
		if err := s.walletRepo.WithTx(tx).Update(wallet); err != nil {
			return err
		}

		desc := fmt.Sprintf("Reward for task: %s", userTask.Task.Title)
		ref := fmt.Sprintf("task-%d", userTaskID)
		if err := s.txnRepo.WithTx(tx).Create(&model.Transaction{
			UserID:      userTask.UserID,
			Type:        model.TransactionEarning,
			Amount:      reward,
			Status:      model.TransactionCompleted,
			Reference:   &ref,
			Description: &desc,
		}); err != nil {
			return err
		}

		notif, err = Build(userTask.UserID, "Task approved",
			fmt.Sprintf("Your submission for %q was approved. $%s has been added to your wallet.",
				userTask.Task.Title, reward.StringFixed(2)),
			model.NotificationTask, map[string]any{"user_task_id": userTaskID})
		if err != nil {
			return err
		}
		return s.notifications.CreateInTx(tx, notif)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Push(notif)

	userTask.Status = model.TaskStatusApproved
	userTask.ApprovedAt = &now
	return userTask, nil
}

// RejectUserTask turns down a submitted attempt. No wallet movement.
func (s *ApprovalService) RejectUserTask(userTaskID int64, reason *string) (*model.UserTask, error) {
	userTask, err := s.userTaskRepo.GetByID(userTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch userTask.Status {
	case model.TaskStatusRejected:
		return userTask, nil // replay
	case model.TaskStatusApproved:
		return nil, ErrInvalidTransition
	}

	title := "your task"
	if userTask.Task != nil {
		title = fmt.Sprintf("%q", userTask.Task.Title)
	}
	message := fmt.Sprintf("Your submission for %s was not approved.", title)
	if reason != nil && *reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, *reason)
	}

	var notif *model.Notification
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userTaskRepo.WithTx(tx).UpdateFields(userTaskID, map[string]interface{}{
			"status":           model.TaskStatusRejected,
			"rejection_reason": reason,
		}); err != nil {
			return err
		}
		notif, err = Build(userTask.UserID, "Task rejected", message,
			model.NotificationTask, map[string]any{"user_task_id": userTaskID})
		if err != nil {
			return err
		}
		return s.notifications.CreateInTx(tx, notif)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Push(notif)

	userTask.Status = model.TaskStatusRejected
	userTask.RejectionReason = reason
	return userTask, nil
}

// ListPendingUserTasks is the admin review queue, oldest first.
func (s *ApprovalService) ListPendingUserTasks() ([]model.UserTask, error) {
	return s.userTaskRepo.ListPending()
}

// UpdateWithdrawal settles a withdrawal request. The amount was moved to the
// pending balance when the request was made; completion debits the hold and
// books totalWithdrawn, failure returns the hold to the available balance.
func (s *ApprovalService) UpdateWithdrawal(withdrawalID int64, status model.TransactionStatus, adminNotes *string) (*model.Withdrawal, error) {
	if status != model.TransactionCompleted && status != model.TransactionFailed {
		return nil, ErrInvalidTransition
	}

	withdrawal, err := s.withdrawalRepo.GetByID(withdrawalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if withdrawal.Status == status {
		return withdrawal, nil // replay
	}
	if withdrawal.Status != model.TransactionPending {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	amount := withdrawal.Amount

	var notif *model.Notification
	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := s.walletRepo.WithTx(tx).GetByUserForUpdate(withdrawal.UserID)
		if err != nil {
			return err
		}

		var title, message string
		ref := fmt.Sprintf("withdrawal-%d", withdrawalID)
		if status == model.TransactionCompleted {
			wallet.PendingBalance = wallet.PendingBalance.Sub(amount)
			wallet.TotalWithdrawn = wallet.TotalWithdrawn.Add(amount)
			title = "Withdrawal completed"
			message = fmt.Sprintf("Your withdrawal of $%s has been paid out.", amount.StringFixed(2))

			desc := "Withdrawal paid out"
			if err := s.txnRepo.WithTx(tx).Create(&model.Transaction{
				UserID:      withdrawal.UserID,
				Type:        model.TransactionWithdrawal,
				Amount:      amount.Neg(),
				Status:      model.TransactionCompleted,
				Reference:   &ref,
				Description: &desc,
			}); err != nil {
				return err
			}
		} else {
			wallet.PendingBalance = wallet.PendingBalance.Sub(amount)
			wallet.AvailableBalance = wallet.AvailableBalance.Add(amount)
			title = "Withdrawal declined"
			message = fmt.Sprintf("Your withdrawal of $%s was declined and the funds were returned to your balance.", amount.StringFixed(2))
			if adminNotes != nil && *adminNotes != "" {
				message = fmt.Sprintf("%s Note: %s", message, *adminNotes)
			}
		}
		if err := s.walletRepo.WithTx(tx).Update(wallet); err != nil {
			return err
		}

		if err := s.withdrawalRepo.WithTx(tx).Update(&model.Withdrawal{
			ID:              withdrawal.ID,
			UserID:          withdrawal.UserID,
			Amount:          withdrawal.Amount,
			PaymentMethodID: withdrawal.PaymentMethodID,
			Status:          status,
			AdminNotes:      adminNotes,
			ProcessedAt:     &now,
			CreatedAt:       withdrawal.CreatedAt,
		}); err != nil {
			return err
		}

		notif, err = Build(withdrawal.UserID, title, message,
			model.NotificationPayment, map[string]any{"withdrawal_id": withdrawalID})
		if err != nil {
			return err
		}
		return s.notifications.CreateInTx(tx, notif)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Push(notif)

	withdrawal.Status = status
	withdrawal.AdminNotes = adminNotes
	withdrawal.ProcessedAt = &now
	return withdrawal, nil
}
