package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/validation"
)

// bindJSON decodes the body into req and validates it. On failure it writes
// a 400 response and returns false.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}

	if err := validation.Validate(req); err != nil {
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			apierrors.BadRequestWithDetails(c, verrs.First(), verrs)
			return false
		}
		apierrors.InternalError(c, err)
		return false
	}
	return true
}

// requireUserID returns the authenticated user ID or writes a 401.
func requireUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Access denied. No token provided")
		return 0, false
	}
	return userID, true
}

type messageResponse struct {
	Message string `json:"message"`
}
