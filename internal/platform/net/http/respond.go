// Package http writes the shared JSON envelope and adapts chi behind a small router
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "smartpaste/internal/platform/net"
)

// Envelope is the body of every JSON response
type Envelope = pnet.Envelope

// JSON writes v with status as application/json
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return-style handlers hand back
// an error Body decides its own status
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a Response returning func into a Handler
func Handle(h func(r *stdhttp.Request) Response) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	reqID := pnet.RequestID(r.Context())

	if err, ok := resp.Body.(error); ok && err != nil {
		status, env := pnet.Failure(err, reqID)
		JSON(w, status, env)
		return
	}
	status := resp.Status
	switch status {
	case 0:
		status = stdhttp.StatusOK
	case stdhttp.StatusNoContent:
		w.WriteHeader(status)
		return
	}
	JSON(w, status, pnet.Success(status, resp.Body, reqID))
}

func OK(data any) Response      { return Response{Status: stdhttp.StatusOK, Body: data} }
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }
func NoContent() Response       { return Response{Status: stdhttp.StatusNoContent} }

// Error lets the error pick status and code
func Error(err error) Response { return Response{Body: err} }
