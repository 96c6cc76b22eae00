package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/pkg/jwt"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/service"
	"github.com/taskhive/taskhive-server/internal/testutil"
)

func gateRouter(t *testing.T, userRepo *repository.UserRepository, route string) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(Auth(testJWTSecret), LoadUser(userRepo))
	router.GET("/gated", AccessGate(service.DefaultTierCatalog(), route), func(c *gin.Context) {
		response.Success(c, nil)
	})
	return router
}

func gatedRequest(t *testing.T, router *gin.Engine, user *model.User) *httptest.ResponseRecorder {
	t.Helper()
	token, err := jwt.GenerateToken(user.ID, string(user.Role), testJWTSecret, 24)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/gated", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAccessGate_FreshUserReachesOrientationOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	user := testutil.TestUser(t, db)

	w := gatedRequest(t, gateRouter(t, userRepo, service.RouteOrientation), user)
	assert.Equal(t, http.StatusOK, w.Code)

	w = gatedRequest(t, gateRouter(t, userRepo, service.RouteWallet), user)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAccessGate_PendingUserCannotReachTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	user := testutil.TestUser(t, db,
		testutil.WithOrientationDone(),
		testutil.WithTier(model.TierSilver),
		testutil.WithApproval(model.ApprovalPending),
	)

	w := gatedRequest(t, gateRouter(t, userRepo, service.RouteTasks), user)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = gatedRequest(t, gateRouter(t, userRepo, service.RouteWaiting), user)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessGate_ApprovedUserReachesTasksAndWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	user := testutil.ApprovedMember(t, db, model.TierSilver)

	for _, route := range []string{service.RouteTasks, service.RouteWallet, service.RouteNotifications} {
		w := gatedRequest(t, gateRouter(t, userRepo, route), user)
		assert.Equal(t, http.StatusOK, w.Code, "route %s", route)
	}
}

func TestAccessGate_SeesCurrentState(t *testing.T) {
	// The gate must reflect a rejection that happened after the token was
	// issued.
	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	user := testutil.ApprovedMember(t, db, model.TierSilver)
	router := gateRouter(t, userRepo, service.RouteTasks)

	w := gatedRequest(t, router, user)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Model(&model.User{}).Where("id = ?", user.ID).
		Update("approval_status", model.ApprovalRejected).Error)

	w = gatedRequest(t, router, user)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	admin := testutil.TestUser(t, db, testutil.WithRole(model.RoleAdmin))
	user := testutil.TestUser(t, db)

	router := gin.New()
	router.Use(Auth(testJWTSecret), LoadUser(userRepo))
	router.GET("/admin", AdminOnly(), func(c *gin.Context) {
		response.Success(c, nil)
	})

	token, err := jwt.GenerateToken(admin.ID, string(admin.Role), testJWTSecret, 24)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	token, err = jwt.GenerateToken(user.ID, string(user.Role), testJWTSecret, 24)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
