package security

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig controls cross-origin access.
type CORSConfig struct {
	// AllowedOrigins lists exact origins; "*" allows any origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int // seconds
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         600,
	}
}

type CORSMiddleware struct {
	config   CORSConfig
	wildcard bool
}

func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{
		config:   config,
		wildcard: slices.Contains(config.AllowedOrigins, "*"),
	}
}

// Middleware sets CORS headers and answers preflight requests with 204.
func (c *CORSMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && c.allowed(origin)

		if allowed {
			h := w.Header()
			if c.wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Expose-Headers", "X-Request-ID")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Methods", strings.Join(c.config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", strings.Join(c.config.AllowedHeaders, ", "))
				if c.config.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(c.config.MaxAge))
				}
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (c *CORSMiddleware) allowed(origin string) bool {
	return c.wildcard || slices.Contains(c.config.AllowedOrigins, origin)
}
