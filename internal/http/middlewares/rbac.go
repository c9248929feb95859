package middlewares

import (
	"net/http"

	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after authentication. A caller without the role is
// answered with 401.
func RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c)

		if !ok {
			abort(c, http.StatusUnauthorized, "unauthenticated", "Missing identity context")
			return
		}
		if u.Role != required {
			abort(c, http.StatusUnauthorized, "forbidden", "Administrator access required")
			return
		}
		c.Next()
	}
}
