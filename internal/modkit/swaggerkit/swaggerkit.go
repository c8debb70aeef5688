// Package swaggerkit serves the api document and swagger ui
package swaggerkit

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"smartpaste/internal/core/version"
	phttp "smartpaste/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// Instance is the swag registry name the ui reads doc.json from
const Instance = "smartpaste"

//go:embed swagger.json
var docTemplate []byte

var register = sync.OnceValue(func() error {
	doc, err := withErrorResponses(docTemplate)
	if err != nil {
		return err
	}
	swag.Register(Instance, &swag.Spec{
		Version:          version.Info().Version,
		BasePath:         "/api/v1",
		Title:            "Smart Paste API",
		Description:      "Clipboard content detection and tool suggestion sessions",
		InfoInstanceName: Instance,
		SwaggerTemplate:  string(doc),
	})
	return nil
})

// Mount serves the ui under /api/docs when enabled
func Mount(r phttp.Router, enabled bool) error {
	if !enabled {
		return nil
	}
	if err := register(); err != nil {
		return err
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/index.html", http.StatusPermanentRedirect)
	})
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName(Instance),
		httpSwagger.URL("/api/docs/doc.json"),
	))
	return nil
}

// withErrorResponses adds the envelope schema and a default 400 and 500 to every operation
func withErrorResponses(raw []byte) ([]byte, error) {
	var spec map[string]any
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, err
	}
	defs, _ := spec["definitions"].(map[string]any)
	if defs == nil {
		defs = map[string]any{}
		spec["definitions"] = defs
	}
	defs["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer"},
			"error":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
	ref := map[string]any{"$ref": "#/definitions/ErrorResponse"}
	defaults := map[string]any{
		"400": map[string]any{"description": "Bad Request", "schema": ref},
		"500": map[string]any{"description": "Internal Server Error", "schema": ref},
	}

	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		item, _ := p.(map[string]any)
		for method, o := range item {
			op, ok := o.(map[string]any)
			if !ok || method == "parameters" {
				continue
			}
			resps, _ := op["responses"].(map[string]any)
			if resps == nil {
				resps = map[string]any{}
				op["responses"] = resps
			}
			for code, resp := range defaults {
				if _, ok := resps[code]; !ok {
					resps[code] = resp
				}
			}
		}
	}
	return json.Marshal(spec)
}
