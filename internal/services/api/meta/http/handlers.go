// Package http provides meta endpoints
package http

import (
	"fmt"
	"net/http"
	"time"

	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/version"
	"smartpaste/internal/modkit/httpkit"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Classifier  *classifier.Classifier // nil uses the embedded default registry
	Catalog     *catalog.Catalog       // nil uses the embedded catalog
	Sessions    func() int             // optional live session counter
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Classifier == nil {
		d.Classifier = classifier.New(nil, classifier.Options{})
	}
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	h := &handlers{deps: d}

	// mount routes
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/rules", h.rules)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"smartpaste-api"`
	Started string `json:"started"  example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"      example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"rules"`
	Status string `json:"status" example:"ok"` // ok fail
	Error  string `json:"error,omitempty" example:"no catalog entry for target cron-parser"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name     string `json:"name"     example:"smartpaste-api"`
	Started  string `json:"started"  example:"2025-09-03T13:00:00Z"`
	Uptime   int64  `json:"uptime"   example:"300"`
	Sessions int    `json:"sessions" example:"3"`
}

// RulesResponse reports the active registry and build info
type RulesResponse struct {
	RegistryVersion int               `json:"registry_version" example:"1"`
	RegistryName    string            `json:"registry_name" example:"smartpaste-default"`
	RuleCount       int               `json:"rule_count" example:"12"`
	Threshold       float64           `json:"threshold" example:"0.7"`
	Build           version.BuildInfo `json:"build"`
}

// Health check
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Readiness check over the rule registry and tool catalog
func (h *handlers) ready(_ *http.Request) (any, error) {
	reg := h.deps.Classifier.Registry()

	rulesCheck := ReadyCheck{Name: "rules", Status: "ok"}
	if reg.Len() == 0 {
		rulesCheck = ReadyCheck{Name: "rules", Status: "fail", Error: "registry is empty"}
	}

	catCheck := ReadyCheck{Name: "catalog", Status: "ok"}
	for _, r := range reg.Rules() {
		if _, ok := h.deps.Catalog.Lookup(r.Target()); !ok {
			catCheck = ReadyCheck{Name: "catalog", Status: "fail", Error: fmt.Sprintf("no catalog entry for target %s", r.Target())}
			break
		}
	}

	overall := "ok"
	if rulesCheck.Status != "ok" || catCheck.Status != "ok" {
		overall = "degraded"
	}
	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{rulesCheck, catCheck},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Build and version info
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// Service info and uptime
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := time.Since(h.deps.StartedAt)
	out := ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}
	if h.deps.Sessions != nil {
		out.Sessions = h.deps.Sessions()
	}
	return out, nil
}

// Rule registry version and build
func (h *handlers) rules(_ *http.Request) (any, error) {
	reg := h.deps.Classifier.Registry()
	return RulesResponse{
		RegistryVersion: reg.Version,
		RegistryName:    reg.Name,
		RuleCount:       reg.Len(),
		Threshold:       h.deps.Classifier.Threshold(),
		Build:           version.Info(),
	}, nil
}
