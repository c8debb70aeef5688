// Package strings holds the small string and slice guards module wiring uses
package strings

import std "strings"

// IfEmpty returns def when in is empty
func IfEmpty[T any](in, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustString panics naming what is missing when s is blank
func MustString(s, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalises a mount prefix to one leading slash and no trailing one
// the root itself is rejected, modules never mount there
func MustPrefix(s string) string {
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}
