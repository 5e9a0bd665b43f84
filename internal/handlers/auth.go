package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new user and returns a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.Header(constants.HeaderAuthToken, token)
	c.JSON(http.StatusCreated, dto.AuthResponse{
		User:  dto.ToUserDTO(*user),
		Token: token,
	})
}

// Login authenticates a user and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	_, token, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.Header(constants.HeaderAuthToken, token)
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// ForgotPassword mails a password reset link.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Email sent"})
}

// ResetPassword sets a new password using the token from the reset link.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Password updated"})
}

// Logout revokes the bearer token used for the request.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetToken(c), middleware.GetClaims(c)); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "User already exists")
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, "Username already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.BadRequest(c, "Invalid credentials")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrResetTokenInvalid):
		apierrors.BadRequest(c, "Invalid or expired token")
	case errors.Is(err, services.ErrResetEmailNotSent):
		apierrors.InternalErrorMessage(c, "Email could not be sent")
	default:
		apierrors.InternalError(c, err)
	}
}
