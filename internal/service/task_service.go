package service

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
	"github.com/taskhive/taskhive-server/internal/model/dto"
	"github.com/taskhive/taskhive-server/internal/repository"
)

// TaskService owns task assignment: which tasks a user may see, and the
// checked, transactional act of starting one.
type TaskService struct {
	db           *gorm.DB
	taskRepo     *repository.TaskRepository
	userTaskRepo *repository.UserTaskRepository
	userRepo     *repository.UserRepository
	catalog      *TierCatalog
}

func NewTaskService(
	db *gorm.DB,
	taskRepo *repository.TaskRepository,
	userTaskRepo *repository.UserTaskRepository,
	userRepo *repository.UserRepository,
	catalog *TierCatalog,
) *TaskService {
	return &TaskService{
		db:           db,
		taskRepo:     taskRepo,
		userTaskRepo: userTaskRepo,
		userRepo:     userRepo,
		catalog:      catalog,
	}
}

// localMidnight is the start of "today" for quota purposes. Quotas reset at
// server-local midnight, matching the attempt timestamps they are counted
// against.
func localMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// ListEligible returns the tasks the user may start right now, plus the
// quota context. During orientation only orientation tasks are visible and
// the tier gate does not apply; afterwards visibility follows the tier
// catalog's category and rank entitlements.
func (s *TaskService) ListEligible(user *model.User, category *model.Category) (*dto.TaskListResponse, error) {
	caps := EvaluateAccess(AccessInputFromUser(user), s.catalog)

	if caps.OrientationOnly {
		orientation := true
		tasks, err := s.taskRepo.ListActive(category, &orientation)
		if err != nil {
			return nil, err
		}
		return &dto.TaskListResponse{Tasks: tasks, DailyLimit: 0, Remaining: len(tasks)}, nil
	}

	if caps.Stage != StageFull {
		return nil, ErrAccessDenied
	}

	catalogOnly := false
	tasks, err := s.taskRepo.ListActive(category, &catalogOnly)
	if err != nil {
		return nil, err
	}

	eligible := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !capsAllowCategory(caps, t.Category) {
			continue
		}
		if !caps.Admin {
			ok, err := s.catalog.CanAccess(*user.SubscriptionTier, t.MinTier)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		eligible = append(eligible, t)
	}

	started, err := s.startedToday(user.ID)
	if err != nil {
		return nil, err
	}
	remaining := caps.DailyTasks - started
	if remaining < 0 {
		remaining = 0
	}
	return &dto.TaskListResponse{
		Tasks:        eligible,
		DailyLimit:   caps.DailyTasks,
		StartedToday: started,
		Remaining:    remaining,
	}, nil
}

// StartTask admits the user to a task. All gates are checked here, server
// side: existence, stage, category entitlement, tier rank, daily quota, and
// for orientation tasks the two-per-category cap. On success the attempt row
// and any orientation progress land in one transaction.
func (s *TaskService) StartTask(user *model.User, taskID int64) (*model.UserTask, error) {
	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !task.IsActive {
		return nil, ErrNotFound
	}

	caps := EvaluateAccess(AccessInputFromUser(user), s.catalog)

	var recordOrientation bool
	switch {
	case caps.OrientationOnly:
		if !task.IsOrientation {
			return nil, ErrAccessDenied
		}
		if user.Orientation().Progress(task.Category).IsCompleted {
			return nil, ErrCategoryAlreadyComplete
		}
		recordOrientation = true

	case caps.Admin:
		// admins bypass the rank and quota gates

	case caps.Stage == StageFull:
		if !capsAllowCategory(caps, task.Category) {
			return nil, ErrAccessDenied
		}
		ok, err := s.catalog.CanAccess(*user.SubscriptionTier, task.MinTier)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAccessDenied
		}
		started, err := s.startedToday(user.ID)
		if err != nil {
			return nil, err
		}
		if started >= caps.DailyTasks {
			return nil, ErrQuotaExceeded
		}

	default:
		return nil, ErrAccessDenied
	}

	userTask := &model.UserTask{
		UserID:    user.ID,
		TaskID:    task.ID,
		Status:    model.TaskStatusPending,
		StartedAt: time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userTaskRepo.WithTx(tx).Create(userTask); err != nil {
			return err
		}
		if !recordOrientation {
			return nil
		}
		updated := user.Orientation().RecordCompletion(task.Category, task.ID)
		return s.userRepo.WithTx(tx).UpdateFields(user.ID, map[string]interface{}{
			"orientation_status": datatypes.NewJSONType(updated),
		})
	})
	if err != nil {
		return nil, err
	}

	userTask.Task = task
	return userTask, nil
}

// RecordOrientationCompletion is the dedicated progress endpoint the
// onboarding client calls when a task's minimum duration has elapsed.
// Recording into an already-satisfied category is a no-op, as is replaying
// the same task ID.
func (s *TaskService) RecordOrientationCompletion(user *model.User, category model.Category, taskID int64) (model.OrientationStatus, error) {
	if !validCategory(category) {
		return model.OrientationStatus{}, ErrNotFound
	}

	current := user.Orientation()
	for _, id := range current.Progress(category).CompletedTasks {
		if id == taskID {
			return current, nil
		}
	}
	updated := current.RecordCompletion(category, taskID)

	err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"orientation_status": datatypes.NewJSONType(updated),
	})
	if err != nil {
		return model.OrientationStatus{}, err
	}
	return updated, nil
}

// OrientationProgress summarizes stored progress for the onboarding screen.
func (s *TaskService) OrientationProgress(user *model.User) *dto.OrientationProgressResponse {
	status := user.Orientation()
	total := 0
	for _, cat := range model.Categories {
		n := len(status.Progress(cat).CompletedTasks)
		if n > model.OrientationCategoryThreshold {
			n = model.OrientationCategoryThreshold
		}
		total += n
	}
	return &dto.OrientationProgressResponse{
		Status:           status,
		CompletedTotal:   total,
		RequiredTotal:    model.OrientationCategoryThreshold * len(model.Categories),
		OverallCompleted: status.OverallCompleted,
	}
}

func (s *TaskService) ListUserTasks(userID int64) ([]model.UserTask, error) {
	return s.userTaskRepo.ListByUser(userID)
}

// CreateTask adds a task to the catalog (admin only, enforced upstream).
func (s *TaskService) CreateTask(req *dto.CreateTaskRequest) (*model.Task, error) {
	if req.MinDuration == 0 {
		req.MinDuration = 150
	}
	task := &model.Task{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		URL:           req.URL,
		Reward:        req.Reward,
		MinTier:       req.MinTier,
		MinDuration:   req.MinDuration,
		IsActive:      true,
		IsOrientation: req.IsOrientation,
	}
	if _, err := s.catalog.Rank(task.MinTier); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) UpdateTask(taskID int64, req *dto.UpdateTaskRequest) (*model.Task, error) {
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.URL != nil {
		fields["url"] = *req.URL
	}
	if req.Reward != nil {
		fields["reward"] = *req.Reward
	}
	if req.MinTier != nil {
		if _, err := s.catalog.Rank(*req.MinTier); err != nil {
			return nil, err
		}
		fields["min_tier"] = *req.MinTier
	}
	if req.MinDuration != nil {
		fields["min_duration"] = *req.MinDuration
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) > 0 {
		if err := s.taskRepo.UpdateFields(taskID, fields); err != nil {
			return nil, err
		}
	}

	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(taskID int64) error {
	err := s.taskRepo.Delete(taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *TaskService) startedToday(userID int64) (int, error) {
	count, err := s.userTaskRepo.CountStartedSince(userID, localMidnight(time.Now()))
	return int(count), err
}

func capsAllowCategory(caps Capabilities, category model.Category) bool {
	for _, c := range caps.Categories {
		if c == category {
			return true
		}
	}
	return false
}
