// Package config reads prefixed environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"smartpaste/internal/platform/logger"
)

// Conf is a namespaced view over the environment, e.g. New().Prefix("SMARTPASTE_")
type Conf struct{ prefix string }

// New creates a root Conf with no prefix
func New() Conf { return Conf{} }

// Prefix creates a child Conf; prefixes concatenate
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// lookup returns the full variable name and its trimmed value
func (c Conf) lookup(key string) (name, val string) {
	name = c.prefix + key
	return name, strings.TrimSpace(os.Getenv(name))
}

// MustString panics when key is missing or blank
func (c Conf) MustString(key string) string {
	name, v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", name).Msg("missing required env")
	}
	return v
}

// MayString returns the value or def when missing or blank
func (c Conf) MayString(key, def string) string {
	if _, v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def; an unparsable value logs and falls back
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool returns the value or def; an unparsable value logs and falls back
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def; values use time.ParseDuration syntax (250ms, 5s)
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayFloat64 returns the value or def; an unparsable value logs and falls back
func (c Conf) MayFloat64(key string, def float64) float64 {
	return may(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	name, s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", name).Str("value", s).Interface("default", def).Msg("invalid env value; using default")
		return def
	}
	return v
}
