package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/auth"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
)

const ContextSession = "session"

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.Session, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and attaches the session to both
// the gin context and the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.RespondError(c, apperrors.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			handler.RespondError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		session, err := m.tokens.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		c.Set(ContextSession, *session)
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), *session))
		c.Next()
	}
}

// RequireRole lets the request through only for the given roles. It must
// run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := auth.SessionFrom(c.Request.Context())
		if !ok {
			handler.RespondError(c, apperrors.Unauthorized("authentication required"))
			return
		}

		for _, role := range roles {
			if session.Role == role {
				c.Next()
				return
			}
		}
		handler.RespondError(c, apperrors.Forbidden("permission denied"))
	}
}
