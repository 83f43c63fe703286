// Package text renders census documents as plain text for terminals and
// logs.
package text

import (
	"context"
	"strings"

	"github.com/goliatone/go-census/pkg/render"
)

// DefaultTitle is used for documents without a title.
const DefaultTitle = "Household Census"

// Renderer writes documents as indented plain text.
type Renderer struct {
	indent string
}

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent overrides the two-space item indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{indent: "  "}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "text"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render ignores theming. Sections are written in order: receipt, messages,
// warnings, missing fields, review.
func (r *Renderer) Render(ctx context.Context, doc render.Document, _ render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = DefaultTitle
	}
	heading(&b, title, "=")

	if doc.Receipt != "" {
		b.WriteString("\nSubmission ID: ")
		b.WriteString(doc.Receipt)
		b.WriteString("\n")
	}
	r.list(&b, "Messages", "! ", doc.Messages)
	r.list(&b, "Warnings", "* ", doc.Warnings)

	if len(doc.Missing) > 0 {
		b.WriteString("\n")
		heading(&b, "Please complete the following", "-")
		for _, summary := range doc.Missing {
			b.WriteString(summary.Format())
			b.WriteString("\n")
		}
	}

	for _, section := range doc.Review.Sections {
		b.WriteString("\n")
		heading(&b, section.Title, "-")
		width := 0
		for _, item := range section.Items {
			if n := len([]rune(item.Label)); n > width {
				width = n
			}
		}
		for _, item := range section.Items {
			b.WriteString(r.indent)
			b.WriteString(item.Label)
			b.WriteString(":")
			b.WriteString(strings.Repeat(" ", width-len([]rune(item.Label))+1))
			b.WriteString(item.Value)
			b.WriteString("\n")
		}
	}
	return []byte(b.String()), nil
}

func (r *Renderer) list(b *strings.Builder, title, bullet string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n")
	heading(b, title, "-")
	for _, line := range lines {
		b.WriteString(r.indent)
		b.WriteString(bullet)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func heading(b *strings.Builder, title, rule string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(rule, len([]rune(title))))
	b.WriteString("\n")
}
