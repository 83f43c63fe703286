// Package pongo renders the census page templates with pongo2.
package pongo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-census/pkg/render/template"
)

// Extension is appended to template names given without it.
const Extension = ".tpl"

// Engine reads templates from an fs.FS. A template is parsed on first use and
// reused afterwards.
type Engine struct {
	set *pongo2.TemplateSet

	mu     sync.Mutex
	parsed map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New returns an Engine over files. Includes resolve against the same tree.
func New(files fs.FS) (*Engine, error) {
	if files == nil {
		return nil, errors.New("pongo: no template files")
	}
	return &Engine{
		set:    pongo2.NewSet("census", pongo2.NewFSLoader(files)),
		parsed: make(map[string]*pongo2.Template),
	}, nil
}

// RenderTemplate executes the named template with data. Struct data is seen
// by the template under its JSON field names.
func (e *Engine) RenderTemplate(name string, data any) (string, error) {
	if !strings.HasSuffix(name, Extension) {
		name += Extension
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	ctx, err := contextOf(data)
	if err != nil {
		return "", fmt.Errorf("pongo: %s: convert data: %w", name, err)
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("pongo: %s: %w", name, err)
	}
	return out, nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.parsed[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("pongo: load %s: %w", name, err)
	}
	e.parsed[name] = tmpl
	return tmpl, nil
}

func contextOf(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ctx := pongo2.Context{}
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}
