package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned by Get for a name no renderer answers to.
var ErrUnknownFormat = errors.New("render: unknown output format")

// Registry maps output format names to renderers. Names are matched without
// regard to case, so "HTML" on a command line finds the html renderer.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
}

// NewRegistry returns a registry holding renderers.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		if err := r.Register(renderer); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds renderer under its Name. A second renderer for the same
// format is rejected.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: nil renderer")
	}
	format := strings.ToLower(strings.TrimSpace(renderer.Name()))
	if format == "" {
		return errors.New("render: renderer has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[format]; taken {
		return fmt.Errorf("render: format %q is already served", format)
	}
	r.byName[format] = renderer
	return nil
}

// Get returns the renderer for format.
func (r *Registry) Get(format string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.byName[strings.ToLower(strings.TrimSpace(format))]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownFormat, format, strings.Join(r.List(), ", "))
	}
	return renderer, nil
}

// List returns the served formats in alphabetical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	formats := make([]string, 0, len(r.byName))
	for format := range r.byName {
		formats = append(formats, format)
	}
	r.mu.RUnlock()
	sort.Strings(formats)
	return formats
}
