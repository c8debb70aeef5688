package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	perr "smartpaste/internal/platform/errors"
	"smartpaste/internal/platform/logger"
	pnet "smartpaste/internal/platform/net"
)

// RecoverJSON turns a handler panic into the 500 envelope and logs the stack
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			status, env := pnet.Failure(perr.PanicErrf("panic recovered"), reqID)
			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(env)
		}()
		next.ServeHTTP(w, r)
	})
}
