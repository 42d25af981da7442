package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/models"
)

// AuthStatusKey holds the models.AuthStatus resolved by AdminOnly.
const AuthStatusKey = "authStatus"

// StatusFunc asks the backend who the visitor behind c is.
type StatusFunc func(c *gin.Context) (models.AuthStatus, error)

// AdminOnly lets through authenticated admins only. Everyone else,
// including visitors whose status cannot be determined, is sent to the
// account view.
func AdminOnly(status StatusFunc, accountPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Ask the backend.
		st, err := status(c)
		if err != nil {
			_ = c.Error(err)
			c.Redirect(http.StatusSeeOther, accountPath)
			c.Abort()
			return
		}

		// 2. Check permission.
		if !st.Authenticated || !st.IsAdmin {
			c.Redirect(http.StatusSeeOther, accountPath)
			c.Abort()
			return
		}

		// 3. Success.
		c.Set(AuthStatusKey, st)
		c.Next()
	}
}
