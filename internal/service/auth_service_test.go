package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/jwt"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/testutil"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireHours = 24

	service := NewAuthService(db,
		repository.NewUserRepository(db),
		repository.NewWalletRepository(db),
		cfg)
	return service, db
}

func registerReq() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:     "Ada Example",
		Email:    "ada@example.com",
		Password: "correct-horse-battery",
		Gender:   model.GenderFemale,
	}
}

func TestAuthService_Register_CreatesUserWalletAndReferralCode(t *testing.T) {
	service, db := setupAuthService(t)

	user, err := service.Register(registerReq())
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.ApprovalPending, user.ApprovalStatus)
	assert.Len(t, user.ReferralCode, 8)
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash)
	assert.True(t, user.Orientation().InOrientation())

	wallet, err := repository.NewWalletRepository(db).GetByUser(user.ID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.IsZero())
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Register(registerReq())
	require.NoError(t, err)

	req := registerReq()
	req.Email = "ADA@example.com" // emails are stored lowercased
	_, err = service.Register(req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Register_WithReferralCode(t *testing.T) {
	service, _ := setupAuthService(t)

	referrer, err := service.Register(registerReq())
	require.NoError(t, err)

	req := registerReq()
	req.Email = "bob@example.com"
	code := referrer.ReferralCode
	req.ReferralCode = &code

	user, err := service.Register(req)
	require.NoError(t, err)
	require.NotNil(t, user.ReferredBy)
	assert.Equal(t, referrer.ReferralCode, *user.ReferredBy)
}

func TestAuthService_Register_UnknownReferralCode(t *testing.T) {
	service, _ := setupAuthService(t)

	req := registerReq()
	bogus := "NOPE1234"
	req.ReferralCode = &bogus

	_, err := service.Register(req)
	assert.ErrorIs(t, err, ErrInvalidReferralCode)
}

func TestAuthService_Login_IssuesToken(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Register(registerReq())
	require.NoError(t, err)

	resp, err := service.Login(&dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := jwt.ParseToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, string(model.RoleUser), claims.Role)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Register(registerReq())
	require.NoError(t, err)

	_, err = service.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	service, db := setupAuthService(t)

	user, err := service.Register(registerReq())
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = service.Login(&dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthService_ChangePassword(t *testing.T) {
	service, _ := setupAuthService(t)

	user, err := service.Register(registerReq())
	require.NoError(t, err)

	err = service.ChangePassword(user.ID, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "new-password-123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = service.ChangePassword(user.ID, &dto.ChangePasswordRequest{
		OldPassword: "correct-horse-battery",
		NewPassword: "new-password-123",
	})
	require.NoError(t, err)

	_, err = service.Login(&dto.LoginRequest{Email: "ada@example.com", Password: "new-password-123"})
	assert.NoError(t, err)
}
