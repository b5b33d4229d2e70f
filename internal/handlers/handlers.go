// Package handlers implements the gin handlers for pages, htmx partials and
// the auth flow.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"

	auth "github.com/CodeAndHammer/gamescope/internal/auth"
	catalog "github.com/CodeAndHammer/gamescope/internal/catalog"
	config "github.com/CodeAndHammer/gamescope/internal/config"
	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	gate "github.com/CodeAndHammer/gamescope/internal/gate"
	session "github.com/CodeAndHammer/gamescope/internal/session"
	wishlist "github.com/CodeAndHammer/gamescope/internal/wishlist"
)

const appTitle = "GameScope"

// App carries everything the handlers need.
type App struct {
	Config    config.Config
	Catalog   *catalog.Service
	Auth      *auth.Manager
	Sessions  *session.Store
	Wishlist  wishlist.Store
	Gates     []*gate.Gate
	StartTime time.Time

	// LimiterCount reports the number of live rate limiters.
	LimiterCount func() int
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// redirect sends the browser to target. htmx requests get HX-Redirect so the
// whole page navigates instead of swapping the login page into a fragment.
func redirect(c *gin.Context, target string) {
	if isHTMX(c) {
		c.Header("HX-Redirect", target)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

// sessionID returns the id RequireAuth stored, or reads/creates the cookie.
func sessionID(app *App, c *gin.Context) string {
	if id := c.GetString(constants.SessionIDKey); id != "" {
		return id
	}
	id := session.GetOrCreateSession(c, app.Config.Server.CookieMaxAge, app.Config.Server.SecureCookies)
	c.Set(constants.SessionIDKey, id)
	return id
}

func csrfToken(c *gin.Context) string {
	if token := c.GetString(constants.CSRFTokenKey); token != "" {
		return token
	}
	token, _ := c.Cookie(constants.CSRFCookieName)
	return token
}

// gameID parses the :id path parameter.
func gameID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	if !govalidator.IsInt(raw) {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
