package middleware

import (
	"net/http"
	"time"

	"smartpaste/internal/platform/logger"
	pnet "smartpaste/internal/platform/net"
)

// AccessLogOptions tunes AccessLog
type AccessLogOptions struct {
	// Slow logs at warn when a request takes at least this long, 0 never does
	Slow time.Duration
}

type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *recorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Flush keeps event streams unbuffered through the wrapper
func (rw *recorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// AccessLog writes one zerolog line per request on the request scoped logger
// it also binds the request id into the logger so handlers inherit it
func AccessLog(opt AccessLogOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), pnet.SessionID(ctx))
			r = r.WithContext(ctx)

			rw := &recorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rw, r)
			elapsed := time.Since(start)

			log := logger.C(ctx)
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Int("bytes", rw.bytes).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}
