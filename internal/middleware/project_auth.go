package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// ProjectAccess loads a project for one of its members.
type ProjectAccess interface {
	GetProjectForMember(ctx context.Context, projectID, userID uint64) (*models.Project, error)
}

// RequireProjectMember checks if the user is a member of the project in the
// :id path parameter. deniedMessage is returned to non-members.
func RequireProjectMember(projects ProjectAccess, deniedMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := utils.ParseIDParam(c, "id")
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, msgNoToken)
			return
		}

		project, err := projects.GetProjectForMember(c.Request.Context(), projectID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrProjectNotFound):
				apierrors.NotFound(c, "Project not found")
			case errors.Is(err, services.ErrNotProjectMember):
				apierrors.Forbidden(c, deniedMessage)
			default:
				apierrors.InternalError(c, err)
			}
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

// GetProject returns the project stored by RequireProjectMember
func GetProject(c *gin.Context) (*models.Project, bool) {
	v, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return nil, false
	}
	project, ok := v.(*models.Project)
	return project, ok
}
