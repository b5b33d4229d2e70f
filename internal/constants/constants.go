package constants

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

const (
	SessionCookieName = "session_id"
	CSRFCookieName    = "csrf_token"
	CSRFHeaderName    = "X-CSRF-Token"
)

const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteSignUp         = "/signup"
	RouteLogout         = "/logout"
	RouteOAuthStart     = "/auth/start/:provider"
	RouteOAuthCallback  = "/auth/callback"
	RouteGames          = "/games"
	RouteGamesSearch    = "/games/search"
	RouteGamesMore      = "/games/more"
	RouteGrid           = "/grid"
	RouteTop            = "/top/:period"
	RouteReviews        = "/reviews"
	RouteGameModal      = "/games/:id/modal"
	RouteGameDetail     = "/games/:id/detail"
	RouteGameScreenshot = "/games/:id/screenshots"
	RouteWishlist       = "/wishlist/:id"
	RouteHealthz        = "/healthz"
	RouteMetrics        = "/metrics"
)

const (
	DefaultPageSize     = 40
	DefaultPageStep     = 40
	DefaultReviewsGame  = 3498
	DefaultReviewsPage  = 60
	ReviewPreviewChars  = 300
	MaxCardPlatformIcon = 4
	MaxRankedGenres     = 2
)

const (
	GridOneColumn   = 1
	GridFourColumns = 4
)

const (
	PeriodWeek     = "week"
	PeriodMonth    = "month"
	PeriodYear     = "year"
	PeriodAllTime  = "all-time"
	PeriodTrending = "trending"
)

const (
	OrderingAdded   = "-added"
	OrderingRating  = "-rating"
	OrderingUpdated = "-updated"
	AllTimeRating   = "4,5"
)

const (
	PlaceholderCover  = "https://via.placeholder.com/200x200"
	PlaceholderAvatar = "https://via.placeholder.com/50x50/667eea/white?text=%F0%9F%91%A4"
	LazyPlaceholder   = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' width='200' height='200'%3E%3Crect width='200' height='200' fill='%23f0f0f0'/%3E%3C/svg%3E"
	ReleaseTBA        = "TBA"
	UnknownValue      = "Unknown"
	DefaultTitle      = "Top Picks"
)

const (
	ErrorCodeMissingFields    = "missing_fields"
	ErrorCodeInvalidEmail     = "invalid_email"
	ErrorCodePasswordTooShort = "password_too_short"
	ErrorCodePasswordMismatch = "password_mismatch"
	ErrorCodeSignInFailed     = "sign_in_failed"
	ErrorCodeSignUpFailed     = "sign_up_failed"
	ErrorCodeOAuthFailed      = "oauth_failed"
	ErrorCodeSignOutFailed    = "sign_out_failed"
	ErrorCodeSessionExpired   = "session_expired"
)

const MinPasswordLength = 6

const OAuthProviderGoogle = "google"

const (
	SessionIDKey = "session_id"
	CSRFTokenKey = "csrf_token"
)
