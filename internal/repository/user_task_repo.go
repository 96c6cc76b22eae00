package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
)

type UserTaskRepository struct {
	db *gorm.DB
}

func NewUserTaskRepository(db *gorm.DB) *UserTaskRepository {
	return &UserTaskRepository{db: db}
}

func (r *UserTaskRepository) WithTx(tx *gorm.DB) *UserTaskRepository {
	return &UserTaskRepository{db: tx}
}

func (r *UserTaskRepository) Create(userTask *model.UserTask) error {
	return r.db.Create(userTask).Error
}

func (r *UserTaskRepository) GetByID(id int64) (*model.UserTask, error) {
	var userTask model.UserTask
	err := r.db.Preload("Task").Where("id = ?", id).First(&userTask).Error
	if err != nil {
		return nil, err
	}
	return &userTask, nil
}

func (r *UserTaskRepository) ListByUser(userID int64) ([]model.UserTask, error) {
	var userTasks []model.UserTask
	err := r.db.Preload("Task").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&userTasks).Error
	return userTasks, err
}

// CountStartedSince counts the user's attempts started at or after the cutoff.
// The daily quota uses the server-local midnight as cutoff.
func (r *UserTaskRepository) CountStartedSince(userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserTask{}).
		Where("user_id = ? AND started_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *UserTaskRepository) ListPending() ([]model.UserTask, error) {
	var userTasks []model.UserTask
	err := r.db.Preload("Task").
		Where("status = ?", model.TaskStatusPending).
		Order("started_at ASC").
		Find(&userTasks).Error
	return userTasks, err
}

func (r *UserTaskRepository) CountByStatus(status model.TaskStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserTask{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *UserTaskRepository) Update(userTask *model.UserTask) error {
	return r.db.Save(userTask).Error
}

func (r *UserTaskRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.UserTask{}).Where("id = ?", id).Updates(fields).Error
}
