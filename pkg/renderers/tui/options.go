package tui

import (
	"github.com/go-logr/logr"

	"github.com/goliatone/go-census/pkg/draft"
)

// Theme captures message prefixes the filler applies when printing.
type Theme struct {
	StepPrefix    string
	InfoPrefix    string
	WarningPrefix string
	ErrorPrefix   string
}

// DefaultTheme is the plain prefix set.
var DefaultTheme = Theme{
	StepPrefix:    "==",
	InfoPrefix:    "",
	WarningPrefix: "!",
	ErrorPrefix:   "x",
}

// Option configures the filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithDrafts saves a draft every time a step is left.
func WithDrafts(drafts *draft.Manager) Option {
	return func(f *Filler) {
		f.drafts = drafts
	}
}

// WithLogger sets the logger.
func WithLogger(logger logr.Logger) Option {
	return func(f *Filler) {
		f.logger = logger
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// WithRetry controls whether an incomplete form offers to go back to the
// first failing step.
func WithRetry(enabled bool) Option {
	return func(f *Filler) {
		f.retry = enabled
	}
}
