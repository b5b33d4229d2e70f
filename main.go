package main

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	auth "github.com/CodeAndHammer/gamescope/internal/auth"
	catalog "github.com/CodeAndHammer/gamescope/internal/catalog"
	config "github.com/CodeAndHammer/gamescope/internal/config"
	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	gate "github.com/CodeAndHammer/gamescope/internal/gate"
	handlers "github.com/CodeAndHammer/gamescope/internal/handlers"
	metrics "github.com/CodeAndHammer/gamescope/internal/metrics"
	rawg "github.com/CodeAndHammer/gamescope/internal/rawg"
	session "github.com/CodeAndHammer/gamescope/internal/session"
	util "github.com/CodeAndHammer/gamescope/internal/util"
	wishlist "github.com/CodeAndHammer/gamescope/internal/wishlist"
	web "github.com/CodeAndHammer/gamescope/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Config{Server: config.LoadServer()}
	util.LogInfo("Starting GameScope in %s mode", map[bool]string{true: "production", false: "development"}[cfg.Server.IsProduction])

	recorder := metrics.NewRecorder()
	gates := waitForConfig(ctx, &cfg, recorder)

	rawgClient := rawg.NewClient(rawg.Config{
		BaseURL: cfg.Catalog.BaseURL,
		APIKey:  cfg.Catalog.APIKey,
		Timeout: cfg.Catalog.Timeout,
		Metrics: recorder,
	})
	authClient := auth.NewClient(auth.ClientConfig{
		URL:     cfg.Auth.URL,
		AnonKey: cfg.Auth.AnonKey,
		Timeout: cfg.Auth.Timeout,
		Metrics: recorder,
	})

	sessions := session.NewStore()
	authManager := auth.NewManager(authClient, sessions, recorder)
	authManager.OnAuthStateChange(sessions.ApplyAuthEvent)

	wishlistStore, closeWishlist := openWishlist(ctx, cfg.Server.DatabaseURL)
	defer closeWishlist()

	srv := &server{
		App: &handlers.App{
			Config: cfg,
			Catalog: catalog.NewService(rawgClient, catalog.Options{
				PageSize: cfg.Catalog.PageSize,
				PageStep: cfg.Catalog.PageStep,
				Metrics:  recorder,
			}),
			Auth:      authManager,
			Sessions:  sessions,
			Wishlist:  wishlistStore,
			Gates:     gates,
			StartTime: time.Now(),
		},
		limits: newLimiterRegistry(cfg.Server),
	}
	srv.LimiterCount = srv.limits.Len

	router := srv.newRouter(recorder)
	srv.startCleanupRoutines(ctx)
	srv.startServer(ctx, router)
}

// waitForConfig gates start-up on the catalog and auth configuration. Both
// gates poll concurrently; if either runs out of attempts the process exits.
func waitForConfig(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder) []*gate.Gate {
	policy := gate.Policy{Interval: cfg.Server.GatePollEvery, MaxAttempts: cfg.Server.GatePollAttempt}
	catalogGate := gate.New("catalog", policy)
	authGate := gate.New("auth", policy)

	probes := map[*gate.Gate]func() error{
		catalogGate: func() error {
			c, err := config.LoadCatalog()
			if err == nil {
				cfg.Catalog = c
			}
			return err
		},
		authGate: func() error {
			a, err := config.LoadAuth()
			if err == nil {
				cfg.Auth = a
			}
			return err
		},
	}

	var wg sync.WaitGroup
	for g, probe := range probes {
		g.OnAttempt = recorder.RecordGateAttempt
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Wait(ctx, probe)
		}()
	}
	wg.Wait()

	gates := []*gate.Gate{catalogGate, authGate}
	for _, g := range gates {
		if err := g.Err(); err != nil {
			util.LogFatal("Configuration unavailable: %v", err)
		}
	}
	return gates
}

func openWishlist(ctx context.Context, databaseURL string) (wishlist.Store, func()) {
	if databaseURL == "" {
		util.LogInfo("DATABASE_URL not set, keeping wishlists in memory")
		return wishlist.NewMemoryStore(), func() {}
	}
	pool, err := wishlist.Connect(ctx, databaseURL)
	if err != nil {
		util.LogFatal("Failed to connect to database: %v", err)
	}
	store := wishlist.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		util.LogFatal("Failed to prepare wishlist schema: %v", err)
	}
	util.LogInfo("Wishlists stored in PostgreSQL")
	return store, pool.Close
}

func (s *server) newRouter(recorder *metrics.Recorder) *gin.Engine {
	router := gin.Default()

	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware(contentPolicy(s.Config.Server, s.Config.Auth.URL)))

	router.Use(issueCSRFToken(s.Config.Server))
	router.Use(requireCSRFToken())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{constants.RouteMetrics})))

	if err := router.SetTrustedProxies(s.Config.Server.TrustedProxies); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	production := s.Config.Server.IsProduction
	router.Use(func(c *gin.Context) {
		s.applyCacheHeaders(c, production)
	})

	assets := fs.FS(web.FS)
	if production && util.DirExists("dist") {
		util.LogInfo("Serving assets from dist/ directory")
		assets = os.DirFS("dist")
	} else {
		util.LogInfo("Serving embedded assets")
	}
	master, err := web.ParseTemplates(assets)
	if err != nil {
		util.LogFatal("Failed to parse templates: %v", err)
	}
	router.SetHTMLTemplate(master)
	static, err := fs.Sub(assets, "static")
	if err != nil {
		util.LogFatal("Failed to open static assets: %v", err)
	}
	router.StaticFS("/static", http.FS(static))

	handlers.RegisterRoutes(router, s.App, s.limits.middleware())
	router.GET(constants.RouteMetrics, gin.WrapH(recorder.Handler()))
	return router
}

func (s *server) startServer(ctx context.Context, router *gin.Engine) {
	port := s.Config.Server.Port
	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	util.LogInfo("Server starting on http://localhost:%s", port)
	if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
		util.LogFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
}

func (s *server) applyCacheHeaders(c *gin.Context, production bool) {
	if production && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(s.Config.Server.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}

func (s *server) startCleanupRoutines(ctx context.Context) {
	s.Sessions.StartCleanup(ctx, 10*time.Minute, s.Config.Server.SessionTTL)

	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.limits.prune(time.Now()); removed > 0 {
					util.LogInfo("Cleaned up %d stale rate limiters", removed)
				}
			}
		}
	}()

	util.LogInfo("Started cleanup routines for sessions and rate limiters")
}
