// Package sections builds the repeated field blocks of the form: children and
// job seekers addressed by 1-based position, and dependents addressed by a
// namespace derived from the selected category label.
//
// The builder never touches values. Every operation returns a Change that the
// session applies to its registry and state.
package sections

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-census/pkg/model"
)

var (
	// ErrGroupFull is returned when adding a block beyond the group maximum.
	ErrGroupFull = errors.New("sections: group is full")
	// ErrNoBlock is returned when removing a position that does not exist.
	ErrNoBlock = errors.New("sections: no such block")
	// ErrUnknownGroup is returned for groups without a template.
	ErrUnknownGroup = errors.New("sections: unknown group")
)

// OtherCategory is the dependent label that adds a relationship field.
const OtherCategory = "Other"

// Template declares the fields of one block. Field identities carry only the
// field name; the builder fills in group, position and namespace.
type Template struct {
	Group  model.Group
	Title  string
	Max    int
	Fields []model.Field
	// Extra fields are bound once when the OtherCategory dependent is selected.
	Extra []model.Field
}

// Move relocates the value and state of one field.
type Move struct {
	From model.Identity
	To   model.Identity
}

// Change describes how the bound field set evolves. The session applies it in
// order: drop values, move survivors, unbind, bind.
type Change struct {
	Group  model.Group
	Drop   []model.Identity
	Moves  []Move
	Unbind []model.Identity
	Bind   []model.Field
}

// Empty reports whether the change does nothing.
func (c Change) Empty() bool {
	return len(c.Drop) == 0 && len(c.Moves) == 0 && len(c.Unbind) == 0 && len(c.Bind) == 0
}

// Builder tracks the blocks currently built for each group.
type Builder struct {
	templates map[model.Group]Template
	counts    map[model.Group]int
	selected  []string
}

// New returns a builder for the given templates.
func New(templates ...Template) *Builder {
	b := &Builder{
		templates: make(map[model.Group]Template, len(templates)),
		counts:    make(map[model.Group]int, len(templates)),
	}
	for _, tpl := range templates {
		b.templates[tpl.Group] = tpl
	}
	return b
}

// Count returns the number of blocks built for group.
func (b *Builder) Count(group model.Group) int {
	if group == model.GroupDependent {
		return len(b.selected)
	}
	return b.counts[group]
}

// Max returns the configured maximum for group.
func (b *Builder) Max(group model.Group) int {
	return b.templates[group].Max
}

// Selected returns the dependent categories currently built, in order.
func (b *Builder) Selected() []string {
	return append([]string(nil), b.selected...)
}

// SetGroupCount destroys every block of a positional group and recreates n of
// them. n is clamped to [0, Max].
func (b *Builder) SetGroupCount(group model.Group, n int) (Change, error) {
	tpl, ok := b.templates[group]
	if !ok || !group.Positional() {
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	n = clamp(n, 0, tpl.Max)

	change := Change{Group: group}
	for pos := 1; pos <= b.counts[group]; pos++ {
		ids := blockIdentities(tpl, pos)
		change.Drop = append(change.Drop, ids...)
		change.Unbind = append(change.Unbind, ids...)
	}
	for pos := 1; pos <= n; pos++ {
		change.Bind = append(change.Bind, blockFields(tpl, pos)...)
	}
	b.counts[group] = n
	return change, nil
}

// Add appends one block to a positional group.
func (b *Builder) Add(group model.Group) (Change, error) {
	tpl, ok := b.templates[group]
	if !ok || !group.Positional() {
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	if b.counts[group] >= tpl.Max {
		return Change{}, fmt.Errorf("%w: at most %d", ErrGroupFull, tpl.Max)
	}
	b.counts[group]++
	return Change{Group: group, Bind: blockFields(tpl, b.counts[group])}, nil
}

// Remove deletes block k and renumbers every later block down by one, keeping
// their values.
func (b *Builder) Remove(group model.Group, k int) (Change, error) {
	tpl, ok := b.templates[group]
	if !ok || !group.Positional() {
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	n := b.counts[group]
	if k < 1 || k > n {
		return Change{}, fmt.Errorf("%w: %s %d of %d", ErrNoBlock, group, k, n)
	}

	change := Change{Group: group, Drop: blockIdentities(tpl, k)}
	for pos := k + 1; pos <= n; pos++ {
		for _, id := range blockIdentities(tpl, pos) {
			change.Moves = append(change.Moves, Move{From: id, To: id.AtPosition(pos - 1)})
		}
	}
	change.Unbind = blockIdentities(tpl, n)
	b.counts[group] = n - 1
	return change, nil
}

// SetSelectedCategories rebuilds the dependent group with one block per
// selected label. Labels sharing a namespace produce a single block.
func (b *Builder) SetSelectedCategories(labels []string) (Change, error) {
	tpl, ok := b.templates[model.GroupDependent]
	if !ok {
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownGroup, model.GroupDependent)
	}

	change := Change{Group: model.GroupDependent}
	for _, label := range b.selected {
		ids := dependentIdentities(tpl, label)
		change.Drop = append(change.Drop, ids...)
		change.Unbind = append(change.Unbind, ids...)
	}

	seen := make(map[string]struct{}, len(labels))
	b.selected = b.selected[:0]
	for _, label := range labels {
		ns := Sanitize(label)
		if ns == "" {
			continue
		}
		if _, dup := seen[ns]; dup {
			continue
		}
		seen[ns] = struct{}{}
		b.selected = append(b.selected, label)
		change.Bind = append(change.Bind, dependentFields(tpl, label)...)
	}
	return change, nil
}

var separatorRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Sanitize folds a category label into a field-key namespace: lower-cased,
// runs of other characters collapsed to "_", no leading or trailing "_".
func Sanitize(label string) string {
	lower := cases.Lower(language.Und).String(label)
	return strings.Trim(separatorRuns.ReplaceAllString(lower, "_"), "_")
}

func blockFields(tpl Template, pos int) []model.Field {
	title := fmt.Sprintf("%s %d", tpl.Title, pos)
	out := make([]model.Field, 0, len(tpl.Fields))
	for _, field := range tpl.Fields {
		field.ID = model.Identity{Group: tpl.Group, Position: pos, Name: field.ID.Name}
		field.Label = title + " " + field.DisplayLabel()
		field.Options = append([]string(nil), field.Options...)
		out = append(out, field)
	}
	return out
}

func blockIdentities(tpl Template, pos int) []model.Identity {
	out := make([]model.Identity, 0, len(tpl.Fields))
	for _, field := range tpl.Fields {
		out = append(out, model.Identity{Group: tpl.Group, Position: pos, Name: field.ID.Name})
	}
	return out
}

func dependentFields(tpl Template, label string) []model.Field {
	ns := Sanitize(label)
	out := make([]model.Field, 0, len(tpl.Fields)+len(tpl.Extra))
	for _, field := range tpl.Fields {
		field.ID = model.Dependent(ns, field.ID.Name)
		field.Label = label + "'s " + field.DisplayLabel()
		out = append(out, field)
	}
	if label == OtherCategory {
		for _, field := range tpl.Extra {
			field.ID.Group = model.GroupDependent
			out = append(out, field)
		}
	}
	return out
}

func dependentIdentities(tpl Template, label string) []model.Identity {
	fields := dependentFields(tpl, label)
	out := make([]model.Identity, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.ID)
	}
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
