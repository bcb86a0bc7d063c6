package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// dashboardHosts are the browser origins allowed to call the admin surface.
// Matching is by host so scheme and trailing-slash variants all resolve to
// the same entry.
var dashboardHosts = map[string]bool{
	"localhost:3000":         true,
	"127.0.0.1:3000":         true,
	"admin.lapaksync.id":     true,
	"lapaksync.id":           true,
	"www.admin.lapaksync.id": true,
	"www.lapaksync.id":       true,
}

// originHost extracts a normalized host from an Origin or Referer value.
// Default ports are stripped so "admin.lapaksync.id:443" matches the bare
// host entry. Returns empty for anything unparseable.
func originHost(raw string) string {
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "/"))
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	if strings.HasSuffix(host, ":443") || strings.HasSuffix(host, ":80") {
		host, _, _ = strings.Cut(host, ":")
	}
	return host
}

// requestOrigin resolves the effective origin of a request, falling back to
// the Referer for browsers that omit Origin on same-site navigations.
func requestOrigin(c *gin.Context) string {
	if origin := c.Request.Header.Get("Origin"); origin != "" {
		return strings.TrimSpace(strings.TrimSuffix(origin, "/"))
	}
	ref := c.Request.Header.Get("Referer")
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// CORSMiddleware sets the CORS headers for the admin dashboard and answers
// preflight requests. Merchant API clients are servers, not browsers, and
// are unaffected.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := requestOrigin(c)

		if host := originHost(origin); host != "" && dashboardHosts[host] {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Api-Key, X-Client-Id")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
