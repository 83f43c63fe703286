// Package validation implements the two completeness passes of the form and
// the per-field format validators. Fields hidden by the rule engine are exempt
// from both: they count as satisfied and are never format checked.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-census/pkg/model"
)

// Subject exposes the form state a validator reads.
type Subject interface {
	Fields() []model.Field
	Value(id model.Identity) model.Value
	Presence(id model.Identity) model.Presence
}

// IssueKind separates completeness problems from shape problems.
type IssueKind string

const (
	IssueMissing IssueKind = "missing"
	IssueFormat  IssueKind = "format"
)

// Issue describes one failing field.
type Issue struct {
	ID      model.Identity `json:"-"`
	Field   string         `json:"field"`
	Label   string         `json:"label"`
	Step    int            `json:"step"`
	Kind    IssueKind      `json:"kind"`
	Message string         `json:"message"`
}

// StepReport is the outcome of the soft per-step pass. It never blocks
// navigation.
type StepReport struct {
	Step       int
	Incomplete int
	// Errors holds the error display state of every field checked in the step.
	Errors  map[model.Identity]bool
	Issues  []Issue
	Warning string
}

// Report is the outcome of the blocking whole-form pass.
type Report struct {
	OK         bool
	Issues     []Issue
	FirstStep  int
	FirstField model.Identity
}

// StepSummary lists the failing labels of one step, capped for display.
type StepSummary struct {
	Step   int      `json:"step"`
	Labels []string `json:"labels"`
	More   int      `json:"more,omitempty"`
}

// DefaultSummaryLimit caps the labels listed per step.
const DefaultSummaryLimit = 10

// Validator runs the completeness passes.
type Validator struct {
	now     func() time.Time
	maxAge  int
	limit   int
	formats map[model.Kind]FormatFunc
}

// Option customises a Validator.
type Option func(*Validator)

// WithClock sets the clock used for date checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithMaxAge rejects birth dates older than years.
func WithMaxAge(years int) Option {
	return func(v *Validator) {
		v.maxAge = years
	}
}

// WithSummaryLimit changes how many labels are listed per step.
func WithSummaryLimit(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.limit = n
		}
	}
}

// WithFormat overrides the validator used for a field kind.
func WithFormat(kind model.Kind, fn FormatFunc) Option {
	return func(v *Validator) {
		if fn != nil {
			v.formats[kind] = fn
		}
	}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		now:     time.Now,
		maxAge:  120,
		limit:   DefaultSummaryLimit,
		formats: defaultFormats(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// CheckStep runs the soft pass over the fields of step.
func (v *Validator) CheckStep(subject Subject, step int) StepReport {
	report := StepReport{Step: step, Errors: make(map[model.Identity]bool)}
	for _, field := range subject.Fields() {
		if field.Step != step {
			continue
		}
		issue, failed := v.checkField(subject, field)
		report.Errors[field.ID] = failed
		if !failed {
			continue
		}
		report.Issues = append(report.Issues, issue)
		if issue.Kind == IssueMissing {
			report.Incomplete++
		}
	}
	if report.Incomplete > 0 {
		report.Warning = fmt.Sprintf("%d required field(s) look incomplete in this step. You can proceed, but please complete them before final submission.", report.Incomplete)
	}
	return report
}

// Incomplete reports whether step has a visible required field left empty.
func (v *Validator) Incomplete(subject Subject, step int) bool {
	for _, field := range subject.Fields() {
		if field.Step == step && missing(subject, field) {
			return true
		}
	}
	return false
}

// CheckAll runs the blocking pass over every bound field. The report lists
// exactly the visible required fields left empty and the visible non-empty
// fields that fail their format check.
func (v *Validator) CheckAll(subject Subject) Report {
	report := Report{OK: true}
	for _, field := range subject.Fields() {
		issue, failed := v.checkField(subject, field)
		if !failed {
			continue
		}
		report.OK = false
		report.Issues = append(report.Issues, issue)
	}
	sort.SliceStable(report.Issues, func(i, j int) bool {
		return report.Issues[i].Step < report.Issues[j].Step
	})
	if len(report.Issues) > 0 {
		report.FirstStep = report.Issues[0].Step
		report.FirstField = report.Issues[0].ID
	}
	return report
}

// Summary groups failing labels by step, listing at most the validator's
// limit per step.
func (v *Validator) Summary(report Report) []StepSummary {
	return Summarize(report, v.limit)
}

// Summarize groups failing labels by step, listing at most limit per step.
func Summarize(report Report, limit int) []StepSummary {
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}
	var out []StepSummary
	index := make(map[int]int)
	for _, issue := range report.Issues {
		pos, ok := index[issue.Step]
		if !ok {
			pos = len(out)
			index[issue.Step] = pos
			out = append(out, StepSummary{Step: issue.Step})
		}
		if len(out[pos].Labels) < limit {
			out[pos].Labels = append(out[pos].Labels, issue.Label)
			continue
		}
		out[pos].More++
	}
	return out
}

// Format renders the summary as plain text.
func (s StepSummary) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step %d:", s.Step)
	for _, label := range s.Labels {
		b.WriteString("\n  - ")
		b.WriteString(label)
	}
	if s.More > 0 {
		fmt.Fprintf(&b, "\n  - ...and %d more", s.More)
	}
	return b.String()
}

// Messages returns the issue messages keyed by wire key, in the shape
// renderers merge into inline field errors.
func (r Report) Messages() map[string][]string {
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// Missing returns the wire keys of every failing field.
func (r Report) Missing() []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Field)
	}
	return out
}

func (v *Validator) checkField(subject Subject, field model.Field) (Issue, bool) {
	presence := subject.Presence(field.ID)
	if !presence.Visible {
		return Issue{}, false
	}
	value := subject.Value(field.ID)
	if value.Empty() {
		if presence.Required {
			return newIssue(field, IssueMissing, "This field is required."), true
		}
		return Issue{}, false
	}
	if msg := v.format(field, value); msg != "" {
		return newIssue(field, IssueFormat, msg), true
	}
	return Issue{}, false
}

func missing(subject Subject, field model.Field) bool {
	presence := subject.Presence(field.ID)
	return presence.Visible && presence.Required && subject.Value(field.ID).Empty()
}

func newIssue(field model.Field, kind IssueKind, msg string) Issue {
	return Issue{
		ID:      field.ID,
		Field:   field.ID.Key(),
		Label:   field.DisplayLabel(),
		Step:    field.Step,
		Kind:    kind,
		Message: msg,
	}
}
