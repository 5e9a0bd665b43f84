package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByResetToken finds the user holding an unexpired reset token digest
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error)

	// FindByIDs loads the given users keyed by ID. Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]models.User, error)

	// List retrieves users with search, sorting and pagination
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user together with everything they own
	Delete(ctx context.Context, id uint64) error
}

// UserFilter holds options for listing users
type UserFilter struct {
	Search     string
	Sort       utils.SortParams
	Pagination utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project and makes its creator the first member
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// FindByIDs loads the given projects keyed by ID
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]models.Project, error)

	// List retrieves projects with filtering and pagination
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)

	// ListByMember lists every project the user belongs to
	ListByMember(ctx context.Context, userID uint64) ([]models.Project, error)

	// Update updates a project
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project with its tasks, members and invitations
	Delete(ctx context.Context, id uint64) error

	// AddMember adds a member. Adding an existing member is a no-op.
	AddMember(ctx context.Context, projectID, userID uint64) error

	// RemoveMember removes a member and unassigns their tasks in the project
	RemoveMember(ctx context.Context, projectID, userID uint64) error

	// IsMember reports whether userID belongs to the project
	IsMember(ctx context.Context, projectID, userID uint64) (bool, error)

	// ListMemberIDs lists the user IDs of all members
	ListMemberIDs(ctx context.Context, projectID uint64) ([]uint64, error)

	// ListMembers lists the members of a project in join order
	ListMembers(ctx context.Context, projectID uint64) ([]models.User, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	MemberID   uint64
	Search     string
	Sort       utils.SortParams
	Pagination utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// ListByProject lists all tasks of a project
	ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error)

	// FindDueForReminder lists pending, assigned tasks due in [from, to)
	FindDueForReminder(ctx context.Context, from, to time.Time) ([]models.Task, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks. When ProjectID is
// nil the list is limited to tasks VisibleTo created or is assigned.
type TaskFilter struct {
	ProjectID  *uint64
	VisibleTo  uint64
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	Search     string
	Sort       utils.SortParams
	Pagination utils.PaginationParams
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	FindByID(ctx context.Context, id uint64) (*models.Invitation, error)

	// FindPending finds the pending invitation for a recipient, if any
	FindPending(ctx context.Context, projectID, recipientID uint64) (*models.Invitation, error)

	// ListByRecipient lists invitations received by a user, newest first
	ListByRecipient(ctx context.Context, recipientID uint64, status *models.InvitationStatus) ([]models.Invitation, error)

	// Reject marks the invitation rejected
	Reject(ctx context.Context, invitation *models.Invitation) error

	// Accept marks the invitation accepted and adds the recipient to the project
	Accept(ctx context.Context, invitation *models.Invitation) error
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(ctx context.Context, notifications []models.Notification) error
	FindByID(ctx context.Context, id uint64) (*models.Notification, error)

	// ListByUser lists a user's notifications, newest first
	ListByUser(ctx context.Context, userID uint64, unreadOnly bool) ([]models.Notification, error)

	MarkRead(ctx context.Context, id uint64) error

	// MarkAllRead marks every unread notification of the user and returns how many changed
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)

	Delete(ctx context.Context, id uint64) error
}

// InvalidTokenRepository stores revoked bearer tokens
type InvalidTokenRepository interface {
	// Add revokes token until expiresAt
	Add(ctx context.Context, token string, expiresAt time.Time) error

	// IsRevoked reports whether token has an unexpired revocation
	IsRevoked(ctx context.Context, token string, now time.Time) (bool, error)

	// DeleteExpired purges revocations that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
