package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/jwt"
	"github.com/taskhive/taskhive-server/internal/repository"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidReferralCode = errors.New("referral code not recognized")
	ErrAccountDisabled     = errors.New("account is disabled")
)

type AuthService struct {
	db         *gorm.DB
	userRepo   *repository.UserRepository
	walletRepo *repository.WalletRepository
	cfg        *config.Config
}

func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, walletRepo *repository.WalletRepository, cfg *config.Config) *AuthService {
	return &AuthService{db: db, userRepo: userRepo, walletRepo: walletRepo, cfg: cfg}
}

// Register creates the user, their referral code and their empty wallet in
// one transaction. A supplied referral code must resolve to an existing user;
// the bonus itself is paid later, when the referred user's first subscription
// payment captures.
func (s *AuthService) Register(req *dto.RegisterRequest) (*model.User, error) {
	taken, err := s.userRepo.ExistsByEmail(strings.ToLower(req.Email))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if req.ReferralCode != nil {
		code := strings.ToUpper(*req.ReferralCode)
		if _, err := s.userRepo.GetByReferralCode(code); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, err
		}
		req.ReferralCode = &code
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code, err := s.generateReferralCode()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:              req.Name,
		Email:             strings.ToLower(req.Email),
		Phone:             req.Phone,
		PasswordHash:      string(hash),
		Gender:            req.Gender,
		Role:              model.RoleUser,
		ReferralCode:      code,
		ReferredBy:        req.ReferralCode,
		IsActive:          true,
		ApprovalStatus:    model.ApprovalPending,
		OrientationStatus: datatypes.NewJSONType(model.NewOrientationStatus()),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(user); err != nil {
			return err
		}
		return s.walletRepo.WithTx(tx).Create(&model.Wallet{UserID: user.ID})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a JWT carrying the user ID and role.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, string(user.Role), s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: user}, nil
}

func (s *AuthService) ChangePassword(userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateFields(userID, map[string]interface{}{"password_hash": string(hash)})
}

// generateReferralCode draws 8 hex characters from a fresh UUID, retrying on
// the rare collision.
func (s *AuthService) generateReferralCode() (string, error) {
	for i := 0; i < 5; i++ {
		code := strings.ToUpper(uuid.NewString()[:8])
		exists, err := s.userRepo.ExistsByReferralCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate referral code")
}
