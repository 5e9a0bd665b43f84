package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, projects, err := h.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user, projects))
}

// UpdateMe patches username and bio. Email is immutable.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), userID, services.UpdateMeInput{
		Username:      req.Username,
		Bio:           req.Bio,
		EmailProvided: req.Email != nil,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user, nil))
}

// DeleteMe deletes the account and revokes the current token
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteMe(c.Request.Context(), userID, middleware.GetToken(c)); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// ListUsers returns every user. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), repository.UserFilter{
		Search:     c.Query("search"),
		Sort:       utils.GetSortParams(c),
		Pagination: params,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	items := make([]dto.ProfileDTO, len(users))
	for i, u := range users {
		items[i] = dto.ToProfileDTO(u, nil)
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:              items,
		PaginationResponse: utils.NewPaginationResponse(params, total),
	})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrEmailImmutable):
		apierrors.BadRequest(c, "Email cannot be updated")
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, "Username already taken")
	default:
		apierrors.InternalError(c, err)
	}
}
