package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "smartpaste/internal/platform/net/http"
	kit "smartpaste/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func TestWithErrorResponses(t *testing.T) {
	out, err := withErrorResponses([]byte(`{"paths":{"/x":{"parameters":[],"get":{"responses":{"500":{"description":"mine"}}},"post":{}}}}`))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	var spec struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
		Defs  map[string]any                        `json:"definitions"`
	}
	if err := json.Unmarshal(out, &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := spec.Defs["ErrorResponse"]; !ok {
		t.Fatalf("no ErrorResponse definition")
	}
	kit.MustContain(t, string(spec.Paths["/x"]["get"]), `"description":"mine"`)
	kit.MustContain(t, string(spec.Paths["/x"]["get"]), `"400"`)
	kit.MustContain(t, string(spec.Paths["/x"]["post"]), `"500"`)
	if string(spec.Paths["/x"]["parameters"]) != "[]" {
		t.Fatalf("parameters touched: %s", spec.Paths["/x"]["parameters"])
	}

	if _, err := withErrorResponses([]byte("{")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMount(t *testing.T) {
	off := phttp.AdaptChi(chi.NewRouter())
	if err := Mount(off, false); err != nil {
		t.Fatalf("disabled: %v", err)
	}

	r := phttp.AdaptChi(chi.NewRouter())
	if err := Mount(r, true); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := Mount(phttp.AdaptChi(chi.NewRouter()), true); err != nil {
		t.Fatalf("second mount: %v", err)
	}

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json status %d", rec.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not json: %v\n%s", err, rec.Body.String())
	}
	info, _ := doc["info"].(map[string]any)
	if info["title"] != "Smart Paste API" || doc["basePath"] != "/api/v1" {
		t.Fatalf("info = %v basePath = %v", info, doc["basePath"])
	}
	kit.MustContain(t, rec.Body.String(), "/smartpaste/sessions/{id}/events")

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	off.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled served %d", rec.Code)
	}
}
