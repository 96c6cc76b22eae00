package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/api/middleware"
	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/service"
	"github.com/taskhive/taskhive-server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockAuth stands in for the Auth+LoadUser chain: the handler sees the given
// user as the authenticated caller.
func mockAuth(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
		c.Set(middleware.RoleKey, string(user.Role))
		c.Set(middleware.UserKey, user)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret-key", ExpireHours: 24},
	}
	authService := service.NewAuthService(db,
		repository.NewUserRepository(db),
		repository.NewWalletRepository(db),
		cfg)
	return NewAuthHandler(authService), db
}

func registerBody() dto.RegisterRequest {
	return dto.RegisterRequest{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
		Gender:   "female",
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	w := performRequest(router, "POST", "/register", registerBody())
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	w := performRequest(router, "POST", "/register", registerBody())
	assert.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, "POST", "/register", registerBody())
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.CodeConflict, resp.Error.Code)
}

func TestAuthHandler_Register_InvalidGender(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	body := registerBody()
	body.Gender = "robot"
	w := performRequest(router, "POST", "/register", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Register_UnknownReferralCode(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)

	body := registerBody()
	bogus := "NOPE0000"
	body.ReferralCode = &bogus
	w := performRequest(router, "POST", "/register", body)
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Error.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)

	w := performRequest(router, "POST", "/register", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)

	w := performRequest(router, "POST", "/register", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "test@example.com",
		Password: "wrong-password",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeAuthFailed, resp.Error.Code)
}
