// Package httpkit is the http surface modules build routes with
// modules import this rather than the platform http package
package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "smartpaste/internal/platform/net/http"
	"smartpaste/internal/platform/net/middleware"
)

type (
	Response = phttp.Response
	Handler  = phttp.Handler
	Router   = phttp.Router
)

func Created(data any) Response { return phttp.Created(data) }
func NoContent() Response       { return phttp.NoContent() }
func Error(err error) Response  { return phttp.Error(err) }

// Call wraps a body-less handler in the envelope
func Call(fn func(*http.Request) (any, error)) Handler { return phttp.Call(fn) }

// Handle adapts a Response returning func
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Param returns a route parameter such as {id}
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }

// Get mounts a body-less GET
func Get(r Router, path string, h func(*http.Request) (any, error)) { r.Get(path, Call(h)) }

// Post mounts a body-less POST
func Post(r Router, path string, h func(*http.Request) (any, error)) { r.Post(path, Call(h)) }

// Delete mounts a body-less DELETE
func Delete(r Router, path string, h func(*http.Request) (any, error)) { r.Delete(path, Call(h)) }

// PostJSON mounts a POST whose body is decoded and validated into T first
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// MountAPI scopes mount under /api/{version} behind mw
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/"+version, func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}

// MountAPIV1 is MountAPI at v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountAPI(r, "v1", mw, mount)
}

// RequestTimeout bounds every api request, event streams included
const RequestTimeout = 30 * time.Second

// CommonStack is the middleware every api scope runs, outermost first
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(RequestTimeout),
	}
}
