package handlers

import (
	"github.com/gin-gonic/gin"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
)

// RegisterRoutes wires every page, partial and auth route. limit guards the
// routes that reach an upstream API or mutate state.
func RegisterRoutes(router gin.IRouter, app *App, limit gin.HandlerFunc) {
	wrap := func(h func(*App, *gin.Context)) gin.HandlerFunc {
		return func(c *gin.Context) { h(app, c) }
	}

	router.GET(constants.RouteLogin, wrap(LoginPageHandler))
	router.POST(constants.RouteLogin, limit, wrap(SignInHandler))
	router.POST(constants.RouteSignUp, limit, wrap(SignUpHandler))
	router.GET(constants.RouteOAuthStart, limit, wrap(OAuthStartHandler))
	router.GET(constants.RouteOAuthCallback, wrap(OAuthCallbackHandler))
	router.POST(constants.RouteLogout, limit, wrap(LogoutHandler))
	router.GET(constants.RouteHealthz, wrap(HealthzHandler))

	protected := router.Group("/", RequireAuth(app))
	protected.GET(constants.RouteHome, wrap(HomeHandler))
	protected.GET(constants.RouteLogout, wrap(LogoutConfirmHandler))
	protected.GET(constants.RouteGames, wrap(GamesHandler))
	protected.GET(constants.RouteGamesSearch, wrap(SearchHandler))
	protected.GET(constants.RouteGamesMore, limit, wrap(LoadMoreHandler))
	protected.POST(constants.RouteGrid, wrap(GridHandler))
	protected.GET(constants.RouteTop, limit, wrap(TopHandler))
	protected.GET(constants.RouteReviews, limit, wrap(ReviewsHandler))
	protected.GET(constants.RouteGameModal, wrap(GameModalHandler))
	protected.GET(constants.RouteGameDetail, limit, wrap(GameDetailHandler))
	protected.GET(constants.RouteGameScreenshot, limit, wrap(ScreenshotsHandler))
	protected.POST(constants.RouteWishlist, limit, wrap(WishlistHandler))
}
