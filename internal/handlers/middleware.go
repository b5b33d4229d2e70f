package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	auth "github.com/CodeAndHammer/gamescope/internal/auth"
	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

// RequireAuth checks the browser's session before any protected content is
// produced. Without a live session the browser is sent to the login page.
func RequireAuth(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := sessionID(app, c)
		if _, err := app.Auth.CheckSession(ctx, id); err != nil {
			target := constants.RouteLogin
			if errors.Is(err, auth.ErrRefreshFailed) {
				target += "?error=" + constants.ErrorCodeSessionExpired
			}
			util.LogInfoCtx(ctx, "No active session for %s, redirecting to login", id)
			redirect(c, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
