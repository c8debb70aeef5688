// Package http provides HTTP transport for smart paste
package http

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"time"

	"smartpaste/internal/core/suggest"
	"smartpaste/internal/modkit/httpkit"
	"smartpaste/internal/platform/logger"
	pnet "smartpaste/internal/platform/net"
	"smartpaste/internal/services/api/smartpaste/domain"
	svc "smartpaste/internal/services/api/smartpaste/service"
)

// keepAlive is the comment frame interval on event streams
var keepAlive = 15 * time.Second

// Register mounts smart paste endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.ClassifyInput](r, "/classify", h.classify)
	httpkit.Get(r, "/rules", h.rules)

	httpkit.Post(r, "/sessions", h.createSession)
	r.Route("/sessions/{id}", func(sr httpkit.Router) {
		sr.Use(sessionScope)
		httpkit.Get(sr, "/", h.session)
		httpkit.PostJSON[domain.PasteInput](sr, "/paste", h.paste)
		httpkit.Post(sr, "/accept", h.accept)
		httpkit.Post(sr, "/dismiss", h.dismiss)
		httpkit.Delete(sr, "/", h.closeSession)
		sr.Get("/events", h.events)
	})
}

// sessionScope tags the request context with the session id for logs and envelopes
func sessionScope(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		id := httpkit.Param(r, "id")
		ctx := pnet.WithRequest(r.Context(), "", id)
		ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type handlers struct{ svc svc.Service }

// Classify pasted text
func (h *handlers) classify(r *stdhttp.Request, in domain.ClassifyInput) (any, error) {
	return h.svc.Classify(r.Context(), in)
}

// Rule registry in evaluation order
func (h *handlers) rules(r *stdhttp.Request) (any, error) {
	return h.svc.Rules(r.Context())
}

// Start a client session
func (h *handlers) createSession(r *stdhttp.Request) (any, error) {
	out, err := h.svc.CreateSession(r.Context())
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// Session snapshot
func (h *handlers) session(r *stdhttp.Request) (any, error) {
	return h.svc.Session(r.Context(), httpkit.Param(r, "id"))
}

// Deliver a paste event
func (h *handlers) paste(r *stdhttp.Request, in domain.PasteInput) (any, error) {
	return h.svc.Paste(r.Context(), httpkit.Param(r, "id"), in)
}

// Accept the active suggestion
func (h *handlers) accept(r *stdhttp.Request) (any, error) {
	return h.svc.Accept(r.Context(), httpkit.Param(r, "id"))
}

// Dismiss the active suggestion
func (h *handlers) dismiss(r *stdhttp.Request) (any, error) {
	return h.svc.Dismiss(r.Context(), httpkit.Param(r, "id"))
}

// Dispose a session
func (h *handlers) closeSession(r *stdhttp.Request) (any, error) {
	if err := h.svc.CloseSession(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// Server-sent session snapshots
func (h *handlers) events(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()
	id := httpkit.Param(r, "id")

	first, err := h.svc.Session(ctx, id)
	if err != nil {
		httpkit.Handle(func(*stdhttp.Request) httpkit.Response { return httpkit.Error(err) })(w, r)
		return
	}

	// buffered so a slow client never blocks a session transition; overflow drops snapshots
	ch := make(chan domain.SessionSnapshot, 16)
	cancel, err := h.svc.Subscribe(ctx, id, func(sn domain.SessionSnapshot) {
		select {
		case ch <- sn:
		default:
		}
	})
	if err != nil {
		httpkit.Handle(func(*stdhttp.Request) httpkit.Response { return httpkit.Error(err) })(w, r)
		return
	}
	defer cancel()

	rc := stdhttp.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(stdhttp.StatusOK)

	log := logger.C(ctx)
	send := func(sn domain.SessionSnapshot) bool {
		b, err := json.Marshal(sn)
		if err != nil {
			log.Error().Err(err).Msg("encode snapshot")
			return false
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\nid: %d\ndata: %s\n\n", sn.Generation, b); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !send(first) {
		return
	}
	tick := time.NewTicker(keepAlive)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case sn := <-ch:
			if !send(sn) || sn.Cause == suggest.CauseClosed {
				return
			}
		case <-tick.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil || rc.Flush() != nil {
				return
			}
		}
	}
}
