package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/libraryhub/internal/actorctx"
	"github.com/geocoder89/libraryhub/internal/auth"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLookup
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireUser admits any request carrying a valid token whose subject
// still exists.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireUser plus the admin role.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	requireRole := RequireRole(user.RoleAdmin)

	return func(c *gin.Context) {
		if _, ok := m.authenticate(c); !ok {
			return
		}
		requireRole(c)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (user.User, bool) {
	raw := tokenFromHeader(c.GetHeader("Authorization"))
	if raw == "" {
		abort(c, http.StatusUnauthorized, "unauthenticated", "Access token not provided")
		return user.User{}, false
	}

	claims, err := m.jwt.VerifyAccessToken(raw)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid_token", "Invalid or expired access token")
		return user.User{}, false
	}

	u, err := m.users.GetUserByID(c.Request.Context(), claims.Subject)
	if errors.Is(err, user.ErrNotFound) {
		abort(c, http.StatusNotFound, "unknown_subject", "User not found")
		return user.User{}, false
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":         "internal_error",
			"errorMessage": err.Error(),
			"requestId":    requestID(c),
		})
		return user.User{}, false
	}

	c.Set(CtxUser, u)
	c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), u))

	return u, true
}

// tokenFromHeader accepts the raw token as well as "Bearer <token>".
func tokenFromHeader(h string) string {
	h = strings.TrimSpace(h)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		h = strings.TrimSpace(h[7:])
	}
	return h
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":      code,
		"message":   message,
		"requestId": requestID(c),
	})
}

func requestID(c *gin.Context) string {
	return c.GetString(CtxRequestID)
}

// Optional helpers so handlers don't need to know the magic keys.

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	u, ok := UserFromContext(c)
	if !ok || u.ID == "" {
		return "", false
	}
	return u.ID, true
}
