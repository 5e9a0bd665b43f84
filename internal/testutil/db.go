// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain-text password of every fixture user.
const Password = "Secret123!"

// NewDB opens a migrated in-memory SQLite database closed at test cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user whose email is derived from username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(Password, bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateAdmin inserts a user with the admin role.
func CreateAdmin(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := CreateUser(t, db, username)
	require.NoError(t, db.Model(user).Update("role", models.RoleAdmin).Error)
	user.Role = models.RoleAdmin
	return user
}

// CreateProject inserts a project owned by owner, with owner and members
// as project members.
func CreateProject(t testing.TB, db *gorm.DB, name string, owner *models.User, members ...*models.User) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, Description: name + " description", CreatedBy: owner.ID}
	require.NoError(t, db.Create(project).Error)

	AddMember(t, db, project, owner)
	for _, m := range members {
		AddMember(t, db, project, m)
	}
	return project
}

// AddMember adds user to project.
func AddMember(t testing.TB, db *gorm.DB, project *models.Project, user *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		JoinedAt:  time.Now(),
	}).Error)
}

// TaskOption customises CreateTask.
type TaskOption func(*models.Task)

func WithProject(p *models.Project) TaskOption {
	return func(t *models.Task) { t.ProjectID = &p.ID }
}

func WithAssignee(u *models.User) TaskOption {
	return func(t *models.Task) { t.AssignedTo = &u.ID }
}

func WithDueDate(d time.Time) TaskOption {
	return func(t *models.Task) { t.DueDate = &d }
}

func WithStatus(s models.TaskStatus) TaskOption {
	return func(t *models.Task) { t.Status = s }
}

// CreateTask inserts a pending medium-priority task created by creator.
func CreateTask(t testing.TB, db *gorm.DB, name string, creator *models.User, opts ...TaskOption) *models.Task {
	t.Helper()

	task := &models.Task{
		Name:      name,
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityMedium,
		CreatedBy: creator.ID,
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(t, db.Create(task).Error)
	return task
}
