package main

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	config "github.com/CodeAndHammer/gamescope/internal/config"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterRegistry holds one token bucket per client IP for the routes that
// reach RAWG or the auth provider.
type limiterRegistry struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	every   rate.Limit
	burst   int
	ttl     time.Duration
	max     int
}

func newLimiterRegistry(server config.Server) *limiterRegistry {
	rps := server.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	return &limiterRegistry{
		clients: make(map[string]*clientLimiter),
		every:   rate.Every(time.Second / time.Duration(rps)),
		burst:   server.RateLimitBurst,
		ttl:     server.RateLimiterTTL,
		max:     server.RateLimiterMax,
	}
}

func (r *limiterRegistry) get(ip string, now time.Time) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client, ok := r.clients[ip]; ok {
		client.lastSeen = now
		return client.limiter
	}
	if ip == "" {
		util.LogWarn("Rate limiting a request without a client IP")
	}
	client := &clientLimiter{limiter: rate.NewLimiter(r.every, r.burst), lastSeen: now}
	r.clients[ip] = client
	return client.limiter
}

func (r *limiterRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// prune drops clients idle for longer than the TTL. If the registry is still
// over its cap, the least recently seen half goes too.
func (r *limiterRegistry) prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for ip, client := range r.clients {
		if now.Sub(client.lastSeen) > r.ttl {
			delete(r.clients, ip)
			removed++
		}
	}

	if r.max > 0 && len(r.clients) > r.max {
		util.LogInfo("Rate limiter registry over cap (%d clients), dropping the oldest half", len(r.clients))
		ips := make([]string, 0, len(r.clients))
		for ip := range r.clients {
			ips = append(ips, ip)
		}
		slices.SortFunc(ips, func(a, b string) int {
			return r.clients[a].lastSeen.Compare(r.clients[b].lastSeen)
		})
		for _, ip := range ips[:len(ips)/2] {
			delete(r.clients, ip)
			removed++
		}
	}
	return removed
}

// middleware answers 429 once a client's bucket is empty. htmx callers also
// get a rate-limit-exceeded trigger so the page can show a toast.
func (r *limiterRegistry) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.get(c.ClientIP(), time.Now()).Allow() {
			c.Next()
			return
		}
		if c.GetHeader("HX-Request") == "true" {
			c.Header("HX-Trigger", "rate-limit-exceeded")
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
	}
}
