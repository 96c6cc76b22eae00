package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/repository"
)

type UserService struct {
	userRepo       *repository.UserRepository
	userTaskRepo   *repository.UserTaskRepository
	taskRepo       *repository.TaskRepository
	subRepo        *repository.SubscriptionRepository
	walletRepo     *repository.WalletRepository
	withdrawalRepo *repository.WithdrawalRepository
	catalog        *TierCatalog
}

func NewUserService(
	userRepo *repository.UserRepository,
	userTaskRepo *repository.UserTaskRepository,
	taskRepo *repository.TaskRepository,
	subRepo *repository.SubscriptionRepository,
	walletRepo *repository.WalletRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	catalog *TierCatalog,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		userTaskRepo:   userTaskRepo,
		taskRepo:       taskRepo,
		subRepo:        subRepo,
		walletRepo:     walletRepo,
		withdrawalRepo: withdrawalRepo,
		catalog:        catalog,
	}
}

func (s *UserService) GetByID(id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Capabilities evaluates the user's current access for the client shell.
func (s *UserService) Capabilities(user *model.User) Capabilities {
	return EvaluateAccess(AccessInputFromUser(user), s.catalog)
}

func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*model.User, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Gender != nil {
		fields["gender"] = *req.Gender
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}
	return s.GetByID(userID)
}

// ListUsers is the admin user table, newest first.
func (s *UserService) ListUsers() ([]model.User, error) {
	return s.userRepo.List()
}

func (s *UserService) ListAllWithdrawals() ([]model.Withdrawal, error) {
	return s.withdrawalRepo.ListAll()
}

// Stats assembles the admin dashboard counters.
func (s *UserService) Stats() (*dto.AdminStats, error) {
	stats := &dto.AdminStats{}
	var err error

	if stats.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if stats.PendingApprovals, err = s.userRepo.CountAwaitingApproval(); err != nil {
		return nil, err
	}
	if stats.ActiveSubscriptions, err = s.subRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.PendingTasks, err = s.userTaskRepo.CountByStatus(model.TaskStatusPending); err != nil {
		return nil, err
	}
	if stats.PendingWithdrawals, err = s.withdrawalRepo.CountByStatus(model.TransactionPending); err != nil {
		return nil, err
	}
	if stats.TotalTasks, err = s.taskRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalPaidOut, err = s.walletRepo.SumTotalWithdrawn(); err != nil {
		return nil, err
	}
	return stats, nil
}
