package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateProject is returned when inserting the project row fails.
	ErrCreateProject = errors.New("project repository: create project failed")
	// ErrCreateOwnerMembership is returned when the creator cannot be added as a member.
	ErrCreateOwnerMembership = errors.New("project repository: create owner membership failed")
)

var projectSortColumns = map[string]string{
	"name":       "projects.name",
	"created_at": "projects.created_at",
	"updated_at": "projects.updated_at",
}

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts the project and the creator's membership atomically.
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProject, err)
		}

		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.CreatedBy,
			JoinedAt:  time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOwnerMembership, err)
		}

		return nil
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]models.Project, error) {
	result := make(map[uint64]models.Project, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}

	var projects []models.Project
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&projects).Error; err != nil {
		return nil, err
	}
	for _, p := range projects {
		result[p.ID] = p
	}
	return result, nil
}

// List retrieves the projects a user belongs to
func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id AND project_members.user_id = ?", filter.MemberID).
		Scopes(database.Search(filter.Search, "projects.name", "projects.description"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := query.
		Scopes(
			database.OrderBy(filter.Sort, projectSortColumns, "projects.created_at DESC", "projects.id"),
			database.Paginate(filter.Pagination),
		).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *GormProjectRepository) ListByMember(ctx context.Context, userID uint64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Order("projects.id").
		Find(&projects).Error
	return projects, err
}

// Update updates a project
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProjectTx(tx, id)
	})
}

func deleteProjectTx(tx *gorm.DB, id uint64) error {
	if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}
	if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
		return fmt.Errorf("delete project members: %w", err)
	}
	if err := tx.Where("project_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
		return fmt.Errorf("delete project invitations: %w", err)
	}
	return tx.Delete(&models.Project{}, id).Error
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(ctx context.Context, projectID, userID uint64) error {
	return addMemberTx(r.db.WithContext(ctx), projectID, userID)
}

func addMemberTx(tx *gorm.DB, projectID, userID uint64) error {
	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		JoinedAt:  time.Now(),
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(ctx context.Context, projectID, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("project_id = ? AND assigned_to = ?", projectID, userID).
			Update("assigned_to", nil).Error; err != nil {
			return fmt.Errorf("unassign member tasks: %w", err)
		}

		return tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMember{}).Error
	})
}

func (r *GormProjectRepository) IsMember(ctx context.Context, projectID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormProjectRepository) ListMemberIDs(ctx context.Context, projectID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Order("joined_at, user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *GormProjectRepository) ListMembers(ctx context.Context, projectID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ?", projectID).
		Order("project_members.joined_at, users.id").
		Find(&users).Error
	return users, err
}
