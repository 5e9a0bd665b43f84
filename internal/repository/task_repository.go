package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

var taskSortColumns = map[string]string{
	"name":       "tasks.name",
	"due_date":   "tasks.due_date",
	"priority":   "tasks.priority",
	"status":     "tasks.status",
	"created_at": "tasks.created_at",
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	} else {
		query = query.Where("(tasks.created_by = ? OR tasks.assigned_to = ?)", filter.VisibleTo, filter.VisibleTo)
	}

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	query = query.Scopes(database.Search(filter.Search, "tasks.name", "tasks.description"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.
		Scopes(
			database.OrderBy(filter.Sort, taskSortColumns, "tasks.created_at DESC", "tasks.id"),
			database.Paginate(filter.Pagination),
		).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *GormTaskRepository) ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id").
		Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) FindDueForReminder(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("due_date >= ? AND due_date < ?", from, to).
		Where("status = ?", models.TaskStatusPending).
		Where("assigned_to IS NOT NULL").
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}
