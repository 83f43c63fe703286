// Package render defines the documents the census form presents outside the
// interactive flow (the review step, the missing-field summary and the
// submission receipt) and a registry of renderers that turn them into bytes.
package render

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-census/pkg/validation"
)

// Document is everything a renderer may present. Empty parts are skipped.
type Document struct {
	Title    string                   `json:"title"`
	Review   Review                   `json:"review"`
	Missing  []validation.StepSummary `json:"missing,omitempty"`
	Warnings []string                 `json:"warnings,omitempty"`
	Messages []string                 `json:"messages,omitempty"`
	// Receipt is the public submission identifier shown after a submit.
	Receipt string `json:"receipt,omitempty"`
}

// Options carry per-render presentation settings.
type Options struct {
	Theme *theme.RendererConfig
}

// Renderer converts a Document into a byte representation (HTML, text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc Document, opts Options) ([]byte, error)
}
