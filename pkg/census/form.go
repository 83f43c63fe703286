// Package census is the household census form session. A Form owns the field
// registry, the explicit value state, the presence snapshot maintained by the
// rule engine and the dynamic blocks of children, job seekers and dependents.
// Every event (a value change, a block added or removed, a step change) runs
// to completion under the form's lock, so a Form behaves like the single UI
// sequence it models even when shared with an autosave goroutine.
package census

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-census/pkg/config"
	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/registry"
	"github.com/goliatone/go-census/pkg/rules"
	"github.com/goliatone/go-census/pkg/sections"
	"github.com/goliatone/go-census/pkg/validation"
)

var (
	// ErrLocked is returned for any mutation after the form was submitted.
	ErrLocked = errors.New("census: form is locked")
	// ErrUnknownField is returned for keys that are not bound.
	ErrUnknownField = errors.New("census: unknown field")
	// ErrHidden is returned when setting a field the rules currently hide.
	ErrHidden = errors.New("census: field is hidden")
	// ErrGroupClosed is returned when adding a job seeker while job seeking
	// is not answered affirmatively.
	ErrGroupClosed = errors.New("census: group is closed")
	// ErrStepIncomplete is returned by Next when every field is mandatory
	// and the current step has gaps.
	ErrStepIncomplete = errors.New("census: step is incomplete")
	// ErrNotDate is returned by CommitDate for non-date fields.
	ErrNotDate = errors.New("census: not a date field")
)

// StepStatus is the navigation mark left on a step.
type StepStatus string

const (
	StepPending    StepStatus = ""
	StepCompleted  StepStatus = "completed"
	StepIncomplete StepStatus = "incomplete"
)

const maxCascade = 8

// Warning is a non-blocking flag raised by the rules.
type Warning struct {
	ID      model.Identity
	Key     string
	Message string
}

// Form is one census session.
type Form struct {
	mu sync.Mutex

	cfg     config.Config
	catalog Catalog
	custom  bool
	now     func() time.Time
	logger  logr.Logger

	registry  *registry.Registry
	state     *model.FormState
	presence  map[model.Identity]model.Presence
	warnings  map[model.Identity]bool
	builder   *sections.Builder
	engine    *rules.Engine
	validator *validation.Validator

	step      int
	status    map[int]StepStatus
	focus     model.Identity
	locked    bool
	draftUsed bool
}

// Option customises a Form.
type Option func(*Form)

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(f *Form) {
		f.cfg = cfg
	}
}

// WithCatalog replaces the catalog derived from the configuration.
func WithCatalog(catalog Catalog) Option {
	return func(f *Form) {
		f.catalog = catalog
		f.custom = true
	}
}

// WithClock sets the clock used for ages and timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets the logger used for rule cascades and restores.
func WithLogger(logger logr.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// New builds a form with every household field bound and the initial rule
// pass applied.
func New(opts ...Option) *Form {
	f := &Form{
		cfg:    config.Defaults(),
		now:    time.Now,
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if !f.custom {
		f.catalog = DefaultCatalog(f.cfg)
	}
	f.validator = validation.New(
		validation.WithClock(f.now),
		validation.WithMaxAge(f.cfg.MaxAge),
	)
	f.reset()
	return f
}

func (f *Form) reset() {
	f.registry = registry.New()
	f.state = model.NewState(nil)
	f.presence = make(map[model.Identity]model.Presence)
	f.warnings = make(map[model.Identity]bool)
	f.builder = sections.New(f.catalog.Templates...)
	f.engine = rules.New(f.catalog.Rules...)
	f.step = 1
	f.status = make(map[int]StepStatus)
	f.focus = model.Identity{}
	f.locked = false
	f.draftUsed = false

	for _, field := range f.catalog.Household {
		f.bind(field)
	}
	f.refresh()
}

// Config returns the configuration the form was built with.
func (f *Form) Config() config.Config {
	return f.cfg
}

// Set assigns the value of the field with wire key key.
func (f *Form) Set(key string, v model.Value) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.registry.Resolve(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	return f.set(id, v)
}

// SetText is Set with a scalar value.
func (f *Form) SetText(key, text string) error {
	return f.Set(key, model.Text(text))
}

// SetValue assigns the value of a field by identity.
func (f *Form) SetValue(id model.Identity, v model.Value) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set(id, v)
}

// CommitDate is the date widget notification: one call per committed date,
// carrying the ISO formatted value.
func (f *Form) CommitDate(key, iso string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.registry.Resolve(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if field, _ := f.registry.Lookup(id); field.Kind != model.KindDate {
		return fmt.Errorf("%w: %s", ErrNotDate, key)
	}
	return f.set(id, model.Text(iso))
}

func (f *Form) set(id model.Identity, v model.Value) error {
	if f.locked {
		return ErrLocked
	}
	field, ok := f.registry.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, id.Key())
	}
	if !f.presence[id].Visible {
		return fmt.Errorf("%w: %s", ErrHidden, id.Key())
	}

	v = model.Normalize(field, coerce(field, v))
	changed := !f.state.Get(id).Equal(v)
	f.state.Set(id, v)

	if changed && id.Group == model.GroupNone {
		switch id.Name {
		case FieldNumChildren:
			n, _ := strconv.Atoi(strings.TrimSpace(v.Text))
			if err := f.setChildCount(n); err != nil {
				return err
			}
		case FieldDependents:
			if err := f.setDependents(v.Items); err != nil {
				return err
			}
		case FieldJobSeeking:
			if err := f.setJobSeekers(0); err != nil {
				return err
			}
		}
	}

	if changed {
		f.fire(id, 0)
	}
	return nil
}

// coerce fits v to the shape of field: sets for multi-selects, scalars
// otherwise. Blank set members are dropped.
func coerce(field model.Field, v model.Value) model.Value {
	if field.Multi() {
		items := v.Items
		if !v.Multi {
			items = []string{v.Text}
		}
		kept := make([]string, 0, len(items))
		for _, item := range items {
			if strings.TrimSpace(item) != "" {
				kept = append(kept, item)
			}
		}
		return model.Set(kept...)
	}
	if v.Multi {
		if len(v.Items) == 0 {
			return model.Value{}
		}
		return model.Text(v.Items[0])
	}
	return v
}

func emptyValue(field model.Field) model.Value {
	return model.Value{Multi: field.Multi()}
}

func initialPresence(field model.Field) model.Presence {
	if field.Hidden {
		return model.Hidden
	}
	return model.Shown(field.Required)
}

func (f *Form) bind(field model.Field) {
	if !f.registry.Bind(field) {
		return
	}
	f.presence[field.ID] = initialPresence(field)
	if _, ok := f.state.Lookup(field.ID); !ok {
		f.state.Set(field.ID, emptyValue(field))
	}
}

func (f *Form) env() rules.Env {
	return rules.Env{Today: f.now(), Count: f.builder.Count}
}

// fire runs the rules triggered by id and applies their delta.
func (f *Form) fire(id model.Identity, depth int) {
	if depth > maxCascade {
		f.logger.Info("rule cascade truncated", "field", id.Key(), "depth", depth)
		return
	}
	delta := f.engine.Apply(id, f.state, f.env())
	if delta.Empty() {
		return
	}
	f.apply(delta, depth)
}

// apply commits a delta: values are cleared before presence changes so no
// rule re-fired by the cascade reads a hidden field's stale value.
func (f *Form) apply(delta rules.Delta, depth int) {
	var cascade []model.Identity
	for _, id := range delta.Cleared() {
		if f.state.Clear(id) && f.engine.Triggers(id) {
			cascade = append(cascade, id)
		}
	}
	for id, v := range delta.Defaults {
		if f.registry.Bound(id) && f.state.Get(id).Empty() {
			f.state.Set(id, v)
		}
	}
	for id, p := range delta.Presence {
		if f.registry.Bound(id) {
			f.presence[id] = p
		}
	}
	for id, on := range delta.Warnings {
		if on {
			f.warnings[id] = true
			continue
		}
		delete(f.warnings, id)
	}

	for _, id := range cascade {
		f.logger.V(1).Info("rule cascade", "field", id.Key(), "depth", depth+1)
		f.fire(id, depth+1)
	}
}

// refresh runs every rule once, in registry order.
func (f *Form) refresh() {
	for _, field := range f.registry.Fields() {
		if f.engine.Triggers(field.ID) {
			f.fire(field.ID, 0)
		}
	}
}

// scrub clears every value whose field is hidden.
func (f *Form) scrub() {
	for _, id := range f.state.Identities() {
		if !f.presence[id].Visible {
			f.state.Clear(id)
		}
	}
}

func (f *Form) applyChange(change sections.Change) {
	for _, id := range change.Drop {
		f.state.Delete(id)
		delete(f.presence, id)
	}
	for _, move := range change.Moves {
		f.state.Move(move.From, move.To)
		if p, ok := f.presence[move.From]; ok {
			f.presence[move.To] = p
			delete(f.presence, move.From)
		}
	}
	for _, id := range change.Unbind {
		f.registry.Unbind(id)
		f.state.Delete(id)
		delete(f.presence, id)
	}
	for _, field := range change.Bind {
		f.bind(field)
	}

	if change.Group == model.GroupChild {
		f.refreshAnomalies()
	}
}

// refreshAnomalies recomputes the child age warnings after the child blocks
// changed.
func (f *Form) refreshAnomalies() {
	for id := range f.warnings {
		if id.Group == model.GroupChild {
			delete(f.warnings, id)
		}
	}
	f.fire(model.Household(FieldHeadDOB), 0)
}

func (f *Form) setChildCount(n int) error {
	change, err := f.builder.SetGroupCount(model.GroupChild, n)
	if err != nil {
		return fmt.Errorf("census: children: %w", err)
	}
	f.applyChange(change)
	f.syncChildCount()
	return nil
}

func (f *Form) syncChildCount() {
	f.state.Set(model.Household(FieldNumChildren), model.Text(strconv.Itoa(f.builder.Count(model.GroupChild))))
}

// setDependents drops labels the dependents field does not offer.
func (f *Form) setDependents(labels []string) error {
	id := model.Household(FieldDependents)
	if field, ok := f.registry.Lookup(id); ok && len(field.Options) > 0 {
		kept := make([]string, 0, len(labels))
		for _, label := range labels {
			if slices.Contains(field.Options, label) {
				kept = append(kept, label)
			}
		}
		if len(kept) != len(labels) {
			f.state.Set(id, model.Set(kept...))
			labels = kept
		}
	}
	change, err := f.builder.SetSelectedCategories(labels)
	if err != nil {
		return fmt.Errorf("census: dependents: %w", err)
	}
	f.applyChange(change)
	return nil
}

func (f *Form) setJobSeekers(n int) error {
	change, err := f.builder.SetGroupCount(model.GroupJobSeeker, n)
	if err != nil {
		return fmt.Errorf("census: job seekers: %w", err)
	}
	f.applyChange(change)
	return nil
}

// SetChildCount rebuilds the child blocks at n, clamped to [0, max]. Every
// child value is discarded.
func (f *Form) SetChildCount(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return ErrLocked
	}
	return f.setChildCount(n)
}

// RemoveChild removes child k and renumbers the later children.
func (f *Form) RemoveChild(k int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return ErrLocked
	}
	change, err := f.builder.Remove(model.GroupChild, k)
	if err != nil {
		return fmt.Errorf("census: remove child: %w", err)
	}
	f.applyChange(change)
	f.syncChildCount()
	return nil
}

// SetDependents rebuilds one dependent block per selected category label.
func (f *Form) SetDependents(labels ...string) error {
	return f.Set(FieldDependents, model.Set(labels...))
}

// AddJobSeeker appends a job seeker block.
func (f *Form) AddJobSeeker() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return ErrLocked
	}
	if !JobSeekingOpen(f.state.Text(model.Household(FieldJobSeeking))) {
		return ErrGroupClosed
	}
	change, err := f.builder.Add(model.GroupJobSeeker)
	if err != nil {
		return fmt.Errorf("census: add job seeker: %w", err)
	}
	f.applyChange(change)
	return nil
}

// RemoveJobSeeker removes job seeker k and renumbers the later ones.
func (f *Form) RemoveJobSeeker(k int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return ErrLocked
	}
	change, err := f.builder.Remove(model.GroupJobSeeker, k)
	if err != nil {
		return fmt.Errorf("census: remove job seeker: %w", err)
	}
	f.applyChange(change)
	return nil
}

// Count returns the number of blocks built for group.
func (f *Form) Count(group model.Group) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builder.Count(group)
}

// Max returns the configured block maximum for group.
func (f *Form) Max(group model.Group) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builder.Max(group)
}

// Value returns the value stored under key.
func (f *Form) Value(key string) model.Value {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.registry.Resolve(key)
	if !ok {
		return model.Value{}
	}
	return f.state.Get(id).Clone()
}

// Presence returns the visibility and requirement of key.
func (f *Form) Presence(key string) (model.Presence, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.registry.Resolve(key)
	if !ok {
		return model.Presence{}, false
	}
	return f.presence[id], true
}

// Field returns the declaration bound under key.
func (f *Form) Field(key string) (model.Field, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.registry.Resolve(key)
	if !ok {
		return model.Field{}, false
	}
	return f.registry.Lookup(id)
}

// Fields returns every bound field in step order.
func (f *Form) Fields() []model.Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registry.Fields()
}

// VisibleFields returns the fields of step the rules currently show.
func (f *Form) VisibleFields(step int) []model.Field {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Field
	for _, field := range f.registry.ForStep(step) {
		if f.presence[field.ID].Visible {
			out = append(out, field)
		}
	}
	return out
}

// Warnings returns the raised warnings sorted by key.
func (f *Form) Warnings() []Warning {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Warning, 0, len(f.warnings))
	for id := range f.warnings {
		out = append(out, Warning{ID: id, Key: id.Key(), Message: AgeWarningMessage})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Lock moves the form into its terminal state.
func (f *Form) Lock() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = true
}

// Locked reports whether the form is in its terminal state.
func (f *Form) Locked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locked
}

// DraftUsed reports whether the session was restored from a draft.
func (f *Form) DraftUsed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftUsed
}

// subject exposes the form to the validator. Callers hold the lock.
type subject struct{ f *Form }

func (s subject) Fields() []model.Field                     { return s.f.registry.Fields() }
func (s subject) Value(id model.Identity) model.Value       { return s.f.state.Get(id) }
func (s subject) Presence(id model.Identity) model.Presence { return s.f.presence[id] }
