package module

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartpaste/internal/modkit"
	phttp "smartpaste/internal/platform/net/http"
	ptime "smartpaste/internal/platform/time"

	"github.com/go-chi/chi/v5"
)

func TestNew_MountsUnderMeta(t *testing.T) {
	clk := ptime.NewManual(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	m := New(modkit.Deps{Clock: clk}, modkit.WithPorts(Ports{Sessions: func() int { return 2 }}))
	if m.Name() != "meta" || m.Ports() != nil {
		t.Fatalf("name %q ports %v", m.Name(), m.Ports())
	}

	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta/service", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data["sessions"] != float64(2) {
		t.Fatalf("service = %v", env.Data)
	}
}
