package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	config "github.com/CodeAndHammer/gamescope/internal/config"
	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

const (
	htmxCDN     = "https://cdn.jsdelivr.net"
	iconFontCDN = "https://cdnjs.cloudflare.com"
)

// contentPolicy builds the CSP for the catalog pages. Cover art and avatars
// load from the configured image hosts; the sign-in forms and the OAuth
// redirect may leave for the auth provider.
func contentPolicy(server config.Server, authURL string) string {
	images := append([]string{"'self'", "data:"}, server.ImageHosts...)
	forms := []string{"'self'"}
	if authURL != "" {
		images = append(images, authURL)
		forms = append(forms, authURL)
	}
	directives := [][]string{
		{"default-src", "'self'"},
		{"script-src", "'self'", htmxCDN, "'unsafe-inline'"},
		{"style-src", "'self'", iconFontCDN, "'unsafe-inline'"},
		{"font-src", "'self'", iconFontCDN},
		append([]string{"img-src"}, images...),
		{"connect-src", "'self'"},
		{"object-src", "'none'"},
		{"base-uri", "'self'"},
		append([]string{"form-action"}, forms...),
		{"frame-ancestors", "'none'"},
	}
	return strings.Join(lo.Map(directives, func(d []string, _ int) string {
		return strings.Join(d, " ")
	}), "; ") + ";"
}

// securityHeadersMiddleware sends policy with 'self' widened to the request
// origin, since htmx requests carry the origin the page was loaded from.
func securityHeadersMiddleware(policy string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}
		self := "'self' " + scheme + "://" + c.Request.Host
		c.Header("Content-Security-Policy", strings.ReplaceAll(policy, "'self'", self))
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), constants.RequestIDKey, id))
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// issueCSRFToken makes sure the browser holds a token cookie and exposes the
// token to templates: the login, sign-up and logout forms post it as a field
// and htmx sends it as a header from the page body.
func issueCSRFToken(server config.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(constants.CSRFCookieName)
		if err != nil || len(token) < 8 {
			buf := make([]byte, 32)
			if _, err := rand.Read(buf); err != nil {
				util.LogErrorCtx(c.Request.Context(), "Failed to generate CSRF token: %v", err)
			} else {
				token = hex.EncodeToString(buf)
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(constants.CSRFCookieName, token, int(server.CookieMaxAge.Seconds()), "/", "", server.SecureCookies, false)
			}
		}
		c.Set(constants.CSRFTokenKey, token)
		c.Next()
	}
}

var unsafeMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// requireCSRFToken rejects state-changing requests (sign-in, grid, wishlist,
// sign-out) whose header or form token does not match the cookie.
func requireCSRFToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !lo.Contains(unsafeMethods, c.Request.Method) {
			c.Next()
			return
		}
		cookie, _ := c.Cookie(constants.CSRFCookieName)
		sent := c.GetHeader(constants.CSRFHeaderName)
		if sent == "" {
			sent = c.PostForm(constants.CSRFTokenKey)
		}
		if cookie == "" || sent != cookie {
			util.LogWarnCtx(c.Request.Context(), "Rejected %s %s: CSRF token mismatch", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid csrf token"})
			return
		}
		c.Next()
	}
}
