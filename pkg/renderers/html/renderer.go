// Package html renders census documents (the review, the missing-field
// summary and the receipt) as a standalone HTML page using pongo2
// templates and go-theme tokens.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-census/pkg/render"
	rendertemplate "github.com/goliatone/go-census/pkg/render/template"
	"github.com/goliatone/go-census/pkg/render/template/pongo"
)

// DefaultTitle is used for documents without a title.
const DefaultTitle = "Household Census"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	inlineStylesheet bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithInlineStylesheet embeds the stock stylesheet in the page when the theme
// does not provide a stylesheet URL.
func WithInlineStylesheet(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStylesheet = enabled
	}
}

// Renderer is the HTML document renderer.
type Renderer struct {
	templates        rendertemplate.TemplateRenderer
	inlineStylesheet bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), inlineStylesheet: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(cfg.templateFS)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, inlineStylesheet: cfg.inlineStylesheet}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

type view struct {
	Doc           render.Document `json:"doc"`
	Theme         rendererTheme   `json:"theme"`
	StylesheetURL string          `json:"stylesheet_url,omitempty"`
	Stylesheet    string          `json:"stylesheet,omitempty"`
}

// Render writes doc as a full HTML page. A theme in opts contributes CSS
// custom properties and, through its asset resolver, the stylesheet link.
func (r *Renderer) Render(ctx context.Context, doc render.Document, opts render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	if strings.TrimSpace(doc.Title) == "" {
		doc.Title = DefaultTitle
	}
	data := view{
		Doc:   doc,
		Theme: buildThemeContext(opts.Theme),
	}
	if opts.Theme != nil && opts.Theme.AssetURL != nil {
		data.StylesheetURL = opts.Theme.AssetURL(StylesheetAsset)
	}
	if data.StylesheetURL == "" && r.inlineStylesheet {
		data.Stylesheet = defaultStylesheet()
	}

	result, err := r.templates.RenderTemplate("templates/review", data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}
