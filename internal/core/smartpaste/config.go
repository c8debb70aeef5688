package smartpaste

import (
	"fmt"
	"strings"
	"time"

	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/debounce"
	"smartpaste/internal/core/suggest"
	"smartpaste/internal/platform/config"

	"github.com/go-playground/validator/v10"
)

// Config carries the engine options
type Config struct {
	AcceptanceThreshold float64       `validate:"gt=0,lte=1"`
	DebounceWindow      time.Duration `validate:"gte=0"` // zero uses the default window
	DismissTimeout      time.Duration `validate:"gt=0"`
	AutoNavigate        bool
	HubSurface          string `validate:"required"` // surface treated as the tool hub for auto-navigate
	RulesFile           string `validate:"omitempty,file"`
}

// DefaultConfig returns the stock options
func DefaultConfig() Config {
	return Config{
		AcceptanceThreshold: classifier.DefaultThreshold,
		DebounceWindow:      debounce.DefaultWindow,
		DismissTimeout:      suggest.DefaultDismissTimeout,
		HubSurface:          "tools",
	}
}

// ConfigFromEnv reads SMARTPASTE_* over the defaults
func ConfigFromEnv() Config {
	c := config.New().Prefix("SMARTPASTE_")
	d := DefaultConfig()
	return Config{
		AcceptanceThreshold: c.MayFloat64("ACCEPTANCE_THRESHOLD", d.AcceptanceThreshold),
		DebounceWindow:      c.MayDuration("DEBOUNCE_WINDOW", d.DebounceWindow),
		DismissTimeout:      c.MayDuration("DISMISS_TIMEOUT", d.DismissTimeout),
		AutoNavigate:        c.MayBool("AUTO_NAVIGATE", d.AutoNavigate),
		HubSurface:          c.MayString("HUB_SURFACE", d.HubSurface),
		RulesFile:           c.MayString("RULES_FILE", d.RulesFile),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid option in one error
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("smartpaste: config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s%s", fe.Field(), fe.Tag(), param(fe.Param())))
	}
	return fmt.Errorf("smartpaste: invalid config: %s", strings.Join(msgs, "; "))
}

func param(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
