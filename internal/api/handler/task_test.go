package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/service"
	"github.com/taskhive/taskhive-server/internal/testutil"
)

func setupTaskHandler(t *testing.T) (*TaskHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	taskService := service.NewTaskService(db,
		repository.NewTaskRepository(db),
		repository.NewUserTaskRepository(db),
		repository.NewUserRepository(db),
		service.DefaultTierCatalog(),
	)
	return NewTaskHandler(taskService), db
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func taskRouter(handler *TaskHandler, user *model.User) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(user))
	router.GET("/tasks", handler.List)
	router.POST("/tasks/:id/start", handler.Start)
	router.GET("/tasks/mine", handler.ListMine)
	router.GET("/orientation/progress", handler.OrientationProgress)
	router.POST("/orientation/complete-task", handler.CompleteOrientationTask)
	return router
}

func TestTaskHandler_List_ApprovedUser(t *testing.T) {
	handler, db := setupTaskHandler(t)
	user := testutil.ApprovedMember(t, db, model.TierSilver)
	testutil.TestTask(t, db, testutil.WithCategory(model.CategorySocial))
	testutil.TestTask(t, db, testutil.WithCategory(model.CategoryAI)) // out of tier

	w := performRequest(taskRouter(handler, user), "GET", "/tasks", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	tasks, ok := data["tasks"].([]any)
	require.True(t, ok)
	assert.Len(t, tasks, 1)
	assert.Equal(t, float64(5), data["daily_limit"])
}

func TestTaskHandler_Start_Success(t *testing.T) {
	handler, db := setupTaskHandler(t)
	user := testutil.ApprovedMember(t, db, model.TierSilver)
	task := testutil.TestTask(t, db, testutil.WithCategory(model.CategorySocial))

	w := performRequest(taskRouter(handler, user), "POST", "/tasks/"+itoa(task.ID)+"/start", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestTaskHandler_Start_UnknownTask(t *testing.T) {
	handler, db := setupTaskHandler(t)
	user := testutil.ApprovedMember(t, db, model.TierSilver)

	w := performRequest(taskRouter(handler, user), "POST", "/tasks/99999/start", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeNotFound, resp.Error.Code)
}

func TestTaskHandler_Start_QuotaExceeded(t *testing.T) {
	handler, db := setupTaskHandler(t)
	user := testutil.ApprovedMember(t, db, model.TierMember) // 2 per day
	router := taskRouter(handler, user)

	for i := 0; i < 2; i++ {
		task := testutil.TestTask(t, db, testutil.WithCategory(model.CategoryMain))
		w := performRequest(router, "POST", "/tasks/"+itoa(task.ID)+"/start", nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	task := testutil.TestTask(t, db, testutil.WithCategory(model.CategoryMain))
	w := performRequest(router, "POST", "/tasks/"+itoa(task.ID)+"/start", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.CodeQuotaExceeded, resp.Error.Code)
}

func TestTaskHandler_Start_OutOfTierCategory(t *testing.T) {
	handler, db := setupTaskHandler(t)
	user := testutil.ApprovedMember(t, db, model.TierSilver)
	task := testutil.TestTask(t, db, testutil.WithCategory(model.CategoryAI))

	w := performRequest(taskRouter(handler, user), "POST", "/tasks/"+itoa(task.ID)+"/start", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.CodeForbidden, resp.Error.Code)
}

func TestTaskHandler_OrientationFlow(t *testing.T) {
	handler, db := setupTaskHandler(t)
	user := testutil.TestUser(t, db)
	router := taskRouter(handler, user)

	w := performRequest(router, "GET", "/orientation/progress", nil)
	resp := parseResponse(t, w)
	require.Equal(t, http.StatusOK, w.Code)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), data["completed_total"])
	assert.Equal(t, float64(10), data["required_total"])

	task := testutil.TestTask(t, db, testutil.AsOrientation(), testutil.WithCategory(model.CategoryMain))
	w = performRequest(router, "POST", "/orientation/complete-task", gin.H{
		"category": "main",
		"task_id":  task.ID,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// The real auth middleware reloads the user from the database on every
	// request; mockAuth serves a cached pointer, so refresh it in place.
	require.NoError(t, db.First(user, user.ID).Error)

	w = performRequest(router, "GET", "/orientation/progress", nil)
	resp = parseResponse(t, w)
	data = resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["completed_total"])
}

func TestTaskHandler_CompleteOrientation_BadCategory(t *testing.T) {
	handler, db := setupTaskHandler(t)
	user := testutil.TestUser(t, db)

	w := performRequest(taskRouter(handler, user), "POST", "/orientation/complete-task", gin.H{
		"category": "cooking",
		"task_id":  1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_ListMine(t *testing.T) {
	handler, db := setupTaskHandler(t)
	user := testutil.ApprovedMember(t, db, model.TierSilver)
	task := testutil.TestTask(t, db, testutil.WithCategory(model.CategoryMain))
	testutil.TestUserTask(t, db, user.ID, task.ID)

	w := performRequest(taskRouter(handler, user), "GET", "/tasks/mine", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	attempts, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, attempts, 1)
}
