// Package config holds the form configuration: step and age limits, group
// maxima, autosave cadence, draft key and the submission endpoint.
//
// Values are layered: Defaults, then an optional file (.yaml, .yml, .json or
// .toml), then CENSUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultEndpointPattern accepts deployed Apps Script web app URLs.
const DefaultEndpointPattern = `^https://script\.google\.com/macros/s/[A-Za-z0-9\-_]+/exec$`

// Features toggles optional behaviour.
type Features struct {
	AutoSave         bool `yaml:"autoSave" toml:"autoSave" json:"autoSave" env:"CENSUS_AUTOSAVE"`
	StepValidation   bool `yaml:"stepValidation" toml:"stepValidation" json:"stepValidation" env:"CENSUS_STEP_VALIDATION"`
	RequireAllFields bool `yaml:"requireAllFields" toml:"requireAllFields" json:"requireAllFields" env:"CENSUS_REQUIRE_ALL_FIELDS"`
}

// Store selects the draft store backend.
type Store struct {
	// Driver is one of "memory", "file" or "sqlite".
	Driver string `yaml:"driver" toml:"driver" json:"driver" env:"CENSUS_STORE_DRIVER"`
	Path   string `yaml:"path" toml:"path" json:"path" env:"CENSUS_STORE_PATH"`
}

// Theme selects the go-theme manifest used by the HTML renderer.
type Theme struct {
	Name    string `yaml:"name" toml:"name" json:"name" env:"CENSUS_THEME"`
	Variant string `yaml:"variant" toml:"variant" json:"variant" env:"CENSUS_THEME_VARIANT"`
}

// Config is the full form configuration.
type Config struct {
	TotalSteps       int           `yaml:"totalSteps" toml:"totalSteps" json:"totalSteps" env:"CENSUS_TOTAL_STEPS"`
	MaxChildren      int           `yaml:"maxChildren" toml:"maxChildren" json:"maxChildren" env:"CENSUS_MAX_CHILDREN"`
	MinAge           int           `yaml:"minAge" toml:"minAge" json:"minAge" env:"CENSUS_MIN_AGE"`
	MaxAge           int           `yaml:"maxAge" toml:"maxAge" json:"maxAge" env:"CENSUS_MAX_AGE"`
	AdultAge         int           `yaml:"adultAge" toml:"adultAge" json:"adultAge" env:"CENSUS_ADULT_AGE"`
	EducationMinAge  int           `yaml:"educationMinAge" toml:"educationMinAge" json:"educationMinAge" env:"CENSUS_EDUCATION_MIN_AGE"`
	JobSeekerMax     int           `yaml:"jobSeekerMax" toml:"jobSeekerMax" json:"jobSeekerMax" env:"CENSUS_JOB_SEEKER_MAX"`
	AutosaveInterval time.Duration `yaml:"autosaveInterval" toml:"autosaveInterval" json:"autosaveInterval" env:"CENSUS_AUTOSAVE_INTERVAL"`
	DraftKey         string        `yaml:"draftKey" toml:"draftKey" json:"draftKey" env:"CENSUS_DRAFT_KEY"`
	SubmissionPrefix string        `yaml:"submissionPrefix" toml:"submissionPrefix" json:"submissionPrefix" env:"CENSUS_SUBMISSION_PREFIX"`
	SubmitURL        string        `yaml:"submitURL" toml:"submitURL" json:"submitURL" env:"CENSUS_SUBMIT_URL"`
	EndpointPattern  string        `yaml:"endpointPattern" toml:"endpointPattern" json:"endpointPattern" env:"CENSUS_ENDPOINT_PATTERN"`
	Features         Features      `yaml:"features" toml:"features" json:"features"`
	Store            Store         `yaml:"store" toml:"store" json:"store"`
	Theme            Theme         `yaml:"theme" toml:"theme" json:"theme"`
}

// Defaults mirrors the stock form configuration.
func Defaults() Config {
	return Config{
		TotalSteps:       5,
		MaxChildren:      4,
		MinAge:           0,
		MaxAge:           120,
		AdultAge:         18,
		EducationMinAge:  3,
		JobSeekerMax:     5,
		AutosaveInterval: time.Minute,
		DraftKey:         "hfc_draft",
		SubmissionPrefix: "HFC",
		EndpointPattern:  DefaultEndpointPattern,
		Features: Features{
			AutoSave:       true,
			StepValidation: true,
		},
		Store: Store{Driver: "memory"},
		Theme: Theme{Name: "census", Variant: "light"},
	}
}

// Load layers path (when non-empty) and the environment over Defaults and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".yaml", ".yml", ".json":
		// yaml.v3 reads JSON documents too, including duration strings.
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}
	return nil
}

// Validate rejects inconsistent limits. An unusable submission endpoint is
// not a load error; it is reported when submitting.
func (c Config) Validate() error {
	var errs []error
	if c.TotalSteps < 1 {
		errs = append(errs, fmt.Errorf("totalSteps must be positive, got %d", c.TotalSteps))
	}
	if c.MaxChildren < 0 || c.JobSeekerMax < 0 {
		errs = append(errs, errors.New("group maxima must not be negative"))
	}
	if c.AdultAge < c.EducationMinAge {
		errs = append(errs, fmt.Errorf("adultAge %d is below educationMinAge %d", c.AdultAge, c.EducationMinAge))
	}
	if c.MaxAge <= c.MinAge {
		errs = append(errs, fmt.Errorf("maxAge %d must exceed minAge %d", c.MaxAge, c.MinAge))
	}
	if c.AutosaveInterval < 0 {
		errs = append(errs, errors.New("autosaveInterval must not be negative"))
	}
	if _, err := regexp.Compile(c.EndpointPattern); err != nil {
		errs = append(errs, fmt.Errorf("endpointPattern: %w", err))
	}
	switch c.Store.Driver {
	case "", "memory", "file", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("store driver %q is not supported", c.Store.Driver))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}

// EndpointConfigured reports whether SubmitURL matches EndpointPattern.
func (c Config) EndpointConfigured() bool {
	url := strings.TrimSpace(c.SubmitURL)
	if url == "" {
		return false
	}
	pattern := c.EndpointPattern
	if pattern == "" {
		pattern = DefaultEndpointPattern
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(url)
}
