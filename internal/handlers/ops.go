package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	gate "github.com/CodeAndHammer/gamescope/internal/gate"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

func HealthzHandler(app *App, c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(app.StartTime)

	gates := lo.SliceToMap(app.Gates, func(g *gate.Gate) (string, gin.H) {
		entry := gin.H{"state": g.State(), "attempts": g.Attempts()}
		if err := g.Err(); err != nil {
			entry["error"] = err.Error()
		}
		return g.Name(), entry
	})
	ready := lo.EveryBy(app.Gates, func(g *gate.Gate) bool { return g.State() == gate.StateReady })

	limiters := 0
	if app.LimiterCount != nil {
		limiters = app.LimiterCount()
	}

	status, code := "ok", http.StatusOK
	if !ready {
		status, code = "initializing", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":          status,
		"env":             map[bool]string{true: "production", false: "development"}[app.Config.Server.IsProduction],
		"gates":           gates,
		"active_sessions": app.Sessions.Count(),
		"signed_in":       app.Sessions.Authenticated(),
		"active_limiters": limiters,
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          util.FormatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
