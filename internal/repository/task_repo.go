package repository

import (
	"gorm.io/gorm"

	"github.com/taskhive/taskhive-server/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(task *model.Task) error {
	return r.db.Create(task).Error
}

func (r *TaskRepository) GetByID(id int64) (*model.Task, error) {
	var task model.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListActive returns active tasks, optionally filtered by category and by
// whether they belong to the orientation set.
func (r *TaskRepository) ListActive(category *model.Category, isOrientation *bool) ([]model.Task, error) {
	q := r.db.Where("is_active = ?", true)
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	if isOrientation != nil {
		q = q.Where("is_orientation = ?", *isOrientation)
	}

	var tasks []model.Task
	err := q.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Update(task *model.Task) error {
	return r.db.Save(task).Error
}

func (r *TaskRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Task{}).Where("id = ?", id).Updates(fields).Error
}

func (r *TaskRepository) Delete(id int64) error {
	result := r.db.Delete(&model.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TaskRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Task{}).Count(&count).Error
	return count, err
}
