// Package version reports build metadata for the smart paste binaries
package version

import "fmt"

// BuildInfo holds version information about a binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String renders a one-line banner for -version flags
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", b.Service, b.Version, b.Commit, b.Date)
}

// set with -ldflags "-X 'smartpaste/internal/core/version.version=v0.1.0'
// -X 'smartpaste/internal/core/version.commit=abcd' -X 'smartpaste/internal/core/version.date=2025-09-02'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns build info for the API service
func Info() BuildInfo { return For("smartpaste-api") }

// For returns build info labelled with service
func For(service string) BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
}
