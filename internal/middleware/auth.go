package middleware

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

const (
	msgNoToken      = "Access denied. No token provided"
	msgInvalidToken = "Access denied. Token is invalid"
	msgForbidden    = "Access forbidden"
)

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// RequireAuth checks the bearer token and stores its claims in the context
func RequireAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			apierrors.Unauthorized(c, msgNoToken)
			return
		}

		claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenRevoked):
				apierrors.Unauthorized(c, msgInvalidToken)
			case errors.Is(err, services.ErrTokenInvalid):
				apierrors.InvalidToken(c, msgInvalidToken)
			default:
				apierrors.InternalError(c, err)
			}
			return
		}

		// Store user info in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyUserRole, claims.Role)
		c.Set(constants.ContextKeyToken, token)
		c.Set(constants.ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole allows the request only for the listed roles. Must run after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok || !slices.Contains(roles, role) {
			apierrors.Forbidden(c, msgForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader(constants.HeaderAuthorization))
	if len(header) > len(constants.BearerPrefix) && strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return strings.TrimSpace(header[len(constants.BearerPrefix):])
	}
	return ""
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUserRole retrieves the current user's role from context
func GetUserRole(c *gin.Context) (models.UserRole, bool) {
	role, exists := c.Get(constants.ContextKeyUserRole)
	if !exists {
		return "", false
	}
	r, ok := role.(models.UserRole)
	return r, ok
}

// GetToken returns the raw bearer token of the request
func GetToken(c *gin.Context) string {
	return c.GetString(constants.ContextKeyToken)
}

// GetClaims returns the verified token claims
func GetClaims(c *gin.Context) *auth.Claims {
	v, exists := c.Get(constants.ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
