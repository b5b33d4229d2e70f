package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

const defaultRawgBaseURL = "https://api.rawg.io/api"

// Covers come from the RAWG media CDN, fallbacks from the placeholder service
// and OAuth avatars from Google.
var defaultImageHosts = []string{
	"https://media.rawg.io",
	"https://via.placeholder.com",
	"https://*.googleusercontent.com",
}

// Catalog holds what the catalog viewer needs to reach the game API and to
// parameterize the browser-side behaviour.
type Catalog struct {
	APIKey              string
	BaseURL             string
	Timeout             time.Duration
	PageSize            int
	PageStep            int
	SearchDebounce      time.Duration
	LazyImageMargin     int
	CardAnimationMargin int
	ReviewsGameID       int
	ReviewsPageSize     int
	ReviewPreviewChars  int
}

// Auth holds the hosted auth provider settings.
type Auth struct {
	URL       string
	AnonKey   string
	PublicURL string
	Timeout   time.Duration
}

type Server struct {
	Port            string
	IsProduction    bool
	SecureCookies   bool
	CookieMaxAge    time.Duration
	StaticCacheAge  time.Duration
	SessionTTL      time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
	RateLimiterTTL  time.Duration
	RateLimiterMax  int
	TrustedProxies  []string
	ImageHosts      []string
	DatabaseURL     string
	GatePollEvery   time.Duration
	GatePollAttempt int
}

type Config struct {
	Server  Server
	Catalog Catalog
	Auth    Auth
}

// MissingError lists required keys that were not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}

// LoadServer reads settings that have usable defaults. It never fails.
func LoadServer() Server {
	_ = godotenv.Load()
	production := util.GetEnvString("GIN_MODE", "") == "release" || util.GetEnvString("ENV", "") == "production"
	return Server{
		Port:            util.GetEnvString("PORT", "8080"),
		IsProduction:    production,
		SecureCookies:   util.GetEnvBool("SECURE_COOKIES", production),
		CookieMaxAge:    util.GetEnvDuration("COOKIE_MAX_AGE", 2*time.Hour),
		StaticCacheAge:  util.GetEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		SessionTTL:      util.GetEnvDuration("SESSION_TTL", 3*time.Hour),
		RateLimitRPS:    util.GetEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  util.GetEnvInt("RATE_LIMIT_BURST", 10),
		RateLimiterTTL:  util.GetEnvDuration("RATE_LIMITER_TTL", time.Hour),
		RateLimiterMax:  positive(util.GetEnvInt("RATE_LIMITER_MAX", 50000), 50000),
		TrustedProxies:  list(util.GetEnvString("TRUSTED_PROXIES", "127.0.0.1")),
		ImageHosts:      list(util.GetEnvString("IMAGE_HOSTS", strings.Join(defaultImageHosts, ","))),
		DatabaseURL:     util.GetEnvString("DATABASE_URL", ""),
		GatePollEvery:   util.GetEnvDuration("CONFIG_POLL_INTERVAL", 100*time.Millisecond),
		GatePollAttempt: util.GetEnvInt("CONFIG_POLL_ATTEMPTS", 50),
	}
}

// LoadCatalog reads the catalog settings. The .env file is re-read on every
// call so values that show up late are picked up by the next gate attempt.
func LoadCatalog() (Catalog, error) {
	_ = godotenv.Load()
	cfg := Catalog{
		APIKey:              util.GetEnvString("RAWG_API_KEY", ""),
		BaseURL:             strings.TrimSuffix(util.GetEnvString("RAWG_BASE_URL", defaultRawgBaseURL), "/"),
		Timeout:             util.GetEnvDuration("RAWG_TIMEOUT", 10*time.Second),
		PageSize:            positive(util.GetEnvInt("CATALOG_PAGE_SIZE", constants.DefaultPageSize), constants.DefaultPageSize),
		PageStep:            positive(util.GetEnvInt("CATALOG_PAGE_STEP", constants.DefaultPageStep), constants.DefaultPageStep),
		SearchDebounce:      util.GetEnvDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		LazyImageMargin:     util.GetEnvInt("LAZY_IMAGE_MARGIN", 50),
		CardAnimationMargin: util.GetEnvInt("CARD_ANIMATION_MARGIN", 40),
		ReviewsGameID:       positive(util.GetEnvInt("REVIEWS_GAME_ID", constants.DefaultReviewsGame), constants.DefaultReviewsGame),
		ReviewsPageSize:     positive(util.GetEnvInt("REVIEWS_PAGE_SIZE", constants.DefaultReviewsPage), constants.DefaultReviewsPage),
		ReviewPreviewChars:  positive(util.GetEnvInt("REVIEW_PREVIEW_CHARS", constants.ReviewPreviewChars), constants.ReviewPreviewChars),
	}
	if cfg.APIKey == "" {
		return cfg, &MissingError{Keys: []string{"RAWG_API_KEY"}}
	}
	return cfg, nil
}

func LoadAuth() (Auth, error) {
	_ = godotenv.Load()
	cfg := Auth{
		URL:       strings.TrimSuffix(util.GetEnvString("SUPABASE_URL", ""), "/"),
		AnonKey:   util.GetEnvString("SUPABASE_ANON_KEY", ""),
		PublicURL: strings.TrimSuffix(util.GetEnvString("PUBLIC_URL", "http://localhost:8080"), "/"),
		Timeout:   util.GetEnvDuration("SUPABASE_TIMEOUT", 10*time.Second),
	}
	var missing []string
	if cfg.URL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if cfg.AnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return cfg, &MissingError{Keys: missing}
	}
	return cfg, nil
}

// list splits a comma separated value, dropping blanks.
func list(raw string) []string {
	return lo.Compact(lo.Map(strings.Split(raw, ","), func(v string, _ int) string {
		return strings.TrimSpace(v)
	}))
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
