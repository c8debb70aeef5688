// Package middleware holds the http middleware every api scope runs
// chi's stock middleware is re-exported so modules never import chi
package middleware

import (
	"net/http"
	"time"

	pstrings "smartpaste/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

type Middleware = func(http.Handler) http.Handler

// RequestID propagates X-Request-ID or mints one
func RequestID() Middleware { return chimw.RequestID }

// RealIP trusts X-Forwarded-For and X-Real-IP
func RealIP() Middleware { return chimw.RealIP }

func NoCache() Middleware      { return chimw.NoCache }
func StripSlashes() Middleware { return chimw.StripSlashes }

// Timeout cancels the request context after d, event streams end with it
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// Compress gzips the compressible content types chi knows, event streams pass through
func Compress(level int) Middleware {
	c := chimw.NewCompressor(level)
	return c.Handler
}

// CORSOptions narrows go-chi/cors, empty fields take the defaults below
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS lets browser clients call the api, Last-Event-ID is allowed for stream resumes
func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "DELETE", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{
			"Accept",
			"Content-Type",
			"Last-Event-ID",
			"X-Request-ID",
		}),
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
