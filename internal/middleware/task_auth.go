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

// TaskAccess loads a task the user may view.
type TaskAccess interface {
	GetTask(ctx context.Context, taskID, userID uint64) (*models.Task, error)
}

// RequireTaskAccess checks if the user can view the task in the :id path
// parameter: its creator, its assignee or a member of its project.
func RequireTaskAccess(tasks TaskAccess) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := utils.ParseIDParam(c, "id")
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, msgNoToken)
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), taskID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTaskNotFound):
				apierrors.NotFound(c, "Task not found")
			case errors.Is(err, services.ErrTaskAccessDenied):
				apierrors.Forbidden(c, "You are not authorized to view this task")
			default:
				apierrors.InternalError(c, err)
			}
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask returns the task stored by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok
}
