package html

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// StylesheetAsset is the manifest asset key of the review stylesheet.
const StylesheetAsset = "census.stylesheet"

// DefaultThemeName names the manifest returned by DefaultManifest.
const DefaultThemeName = "census"

var (
	// ErrUnknownTheme is returned when resolving a theme that was not registered.
	ErrUnknownTheme = errors.New("html: unknown theme")
	// ErrUnknownVariant is returned when the theme has no such variant.
	ErrUnknownVariant = errors.New("html: unknown theme variant")
)

// DefaultManifest describes the stock census theme with a light base and a
// dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-primary": "#1d4ed8",
			"color-text":    "#1f2933",
			"color-surface": "#ffffff",
			"color-border":  "#d8dee4",
			"color-error":   "#b91c1c",
			"color-warning": "#b45309",
			"font-family":   "system-ui, sans-serif",
		},
		Templates: map[string]string{
			"census.review": "templates/review.tpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/census",
			Files: map[string]string{
				StylesheetAsset: StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			"light": {
				Tokens: map[string]string{
					"color-surface": "#ffffff",
				},
			},
			"dark": {
				Tokens: map[string]string{
					"color-primary": "#93c5fd",
					"color-text":    "#e5e7eb",
					"color-surface": "#111827",
					"color-border":  "#374151",
				},
			},
		},
	}
}

// Themes resolves renderer configuration from registered manifests.
type Themes struct {
	manifests map[string]*theme.Manifest
}

// NewThemes registers manifests, validating each through a go-theme
// registry. Without manifests the stock census theme is used.
func NewThemes(manifests ...*theme.Manifest) (*Themes, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	registry := theme.NewRegistry()
	themes := &Themes{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("html: register theme %q: %w", manifest.Name, err)
		}
		themes.manifests[manifest.Name] = manifest
	}
	return themes, nil
}

// Names lists the registered themes, sorted.
func (t *Themes) Names() []string {
	names := make([]string, 0, len(t.manifests))
	for name := range t.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve merges the base tokens, templates and assets of theme name with
// those of variant. Tokens become CSS custom properties; an empty name
// selects the stock theme.
func (t *Themes) Resolve(name, variant string) (*theme.RendererConfig, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultThemeName
	}
	manifest, ok := t.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownTheme, name, t.Names())
	}

	tokens := copyStringMap(manifest.Tokens)
	partials := copyStringMap(manifest.Templates)
	files := copyStringMap(manifest.Assets.Files)
	if variant != "" {
		v, ok := manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("%w: %q for theme %q", ErrUnknownVariant, variant, name)
		}
		tokens = merge(tokens, v.Tokens)
		partials = merge(partials, v.Templates)
		files = merge(files, v.Assets.Files)
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}
	prefix := strings.TrimSuffix(manifest.Assets.Prefix, "/")

	return &theme.RendererConfig{
		Theme:    name,
		Variant:  variant,
		Tokens:   tokens,
		CSSVars:  cssVars,
		Partials: partials,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" {
				return file
			}
			return prefix + "/" + strings.TrimPrefix(file, "/")
		},
	}, nil
}

func merge(base, override map[string]string) map[string]string {
	if base == nil {
		base = make(map[string]string, len(override))
	}
	for key, value := range override {
		base[key] = value
	}
	return base
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

type rendererTheme struct {
	Name         string            `json:"name,omitempty"`
	Variant      string            `json:"variant,omitempty"`
	CSSVars      map[string]string `json:"cssVars,omitempty"`
	CSSVarsStyle string            `json:"css_vars_style,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	ctx := rendererTheme{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		CSSVars: copyStringMap(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	return ctx
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
