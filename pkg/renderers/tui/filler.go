// Package tui fills a census form interactively in the terminal. Steps are
// walked in order and only the fields the rules currently show are asked,
// so answering the marital status or the number of children changes what
// comes next.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-census/pkg/census"
	"github.com/goliatone/go-census/pkg/draft"
	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/validation"
)

// BlankOption is offered first by optional single choice prompts.
const BlankOption = "(leave blank)"

// Filler drives a census form through a PromptDriver.
type Filler struct {
	driver PromptDriver
	drafts *draft.Manager
	logger logr.Logger
	theme  Theme
	retry  bool
}

// New constructs a Filler backed by survey unless another driver is given.
func New(options ...Option) *Filler {
	f := &Filler{
		logger: logr.Discard(),
		theme:  DefaultTheme,
		retry:  true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Fill walks form from its current step to the review step, then runs the
// blocking check. With retry enabled an incomplete form offers to return to
// the first failing step; otherwise the failing report is returned as is.
func (f *Filler) Fill(ctx context.Context, form *census.Form) (validation.Report, error) {
	if form == nil {
		return validation.Report{}, ErrNoForm
	}
	if form.Locked() {
		return validation.Report{}, census.ErrLocked
	}
	review := form.Config().TotalSteps

	for {
		for step := form.Step(); step < review; step = form.Step() {
			if err := f.fillStep(ctx, form, step); err != nil {
				return validation.Report{}, err
			}
			report, err := form.Next()
			if errors.Is(err, census.ErrStepIncomplete) {
				f.say(ctx, f.theme.ErrorPrefix, fmt.Sprintf("Step %d has %d incomplete field(s). Every field is required.", step, report.Incomplete))
				continue
			}
			if err != nil {
				return validation.Report{}, fmt.Errorf("tui: leave step %d: %w", step, err)
			}
			if report.Warning != "" {
				f.say(ctx, f.theme.WarningPrefix, report.Warning)
			}
			f.saveDraft(ctx, form)
		}

		report := form.CheckAll()
		if report.OK {
			return report, nil
		}
		f.say(ctx, f.theme.ErrorPrefix, "Please complete the following:")
		for _, summary := range form.Summary(report) {
			f.say(ctx, f.theme.InfoPrefix, summary.Format())
		}
		if !f.retry {
			return report, nil
		}
		again, err := f.driver.Confirm(ctx, fmt.Sprintf("Go back to step %d?", report.FirstStep), true)
		if err != nil {
			return validation.Report{}, err
		}
		if !again {
			return report, nil
		}
	}
}

func (f *Filler) fillStep(ctx context.Context, form *census.Form, step int) error {
	title := census.StepNames[step]
	if title == "" {
		title = fmt.Sprintf("Step %d", step)
	}
	f.say(ctx, f.theme.StepPrefix, fmt.Sprintf("Step %d: %s", step, title))

	asked := make(map[model.Identity]bool)
	for {
		field, ok := nextField(form.VisibleFields(step), asked)
		if !ok {
			return nil
		}
		asked[field.ID] = true
		if err := f.promptField(ctx, form, step, field); err != nil {
			return err
		}
		if field.ID == model.Household(census.FieldJobSeeking) {
			if err := f.promptJobSeekers(ctx, form); err != nil {
				return err
			}
		}
	}
}

// nextField returns the first visible field not yet asked. Visibility is
// read again after every answer.
func nextField(fields []model.Field, asked map[model.Identity]bool) (model.Field, bool) {
	for _, field := range fields {
		if !asked[field.ID] {
			return field, true
		}
	}
	return model.Field{}, false
}

func (f *Filler) promptField(ctx context.Context, form *census.Form, step int, field model.Field) error {
	key := field.ID.Key()
	presence, _ := form.Presence(key)
	label := field.DisplayLabel()
	if presence.Required {
		label += " *"
	}
	current := form.Value(key)

	for {
		var (
			value model.Value
			err   error
		)
		switch field.Kind {
		case model.KindSingle:
			value, err = f.promptSingle(ctx, label, field, current, presence.Required)
		case model.KindMulti:
			value, err = f.promptMulti(ctx, label, field, current)
		default:
			value, err = f.promptText(ctx, label, field, current)
		}
		if err != nil {
			return err
		}

		if field.Kind == model.KindDate {
			err = form.CommitDate(key, value.Text)
		} else {
			err = form.Set(key, value)
		}
		if err != nil {
			return fmt.Errorf("tui: set %s: %w", key, err)
		}
		f.logger.V(1).Info("field answered", "field", key)

		if msg := formatIssue(form.CheckStep(step), key); msg != "" {
			f.say(ctx, f.theme.ErrorPrefix, fmt.Sprintf("%s: %s", field.DisplayLabel(), msg))
			current = form.Value(key)
			continue
		}
		if field.Kind != model.KindDate {
			return nil
		}
		for _, warning := range form.Warnings() {
			if warning.ID.InBlock(field.ID) {
				f.say(ctx, f.theme.WarningPrefix, warning.Message)
			}
		}
		return nil
	}
}

func formatIssue(report validation.StepReport, key string) string {
	for _, issue := range report.Issues {
		if issue.Field == key && issue.Kind == validation.IssueFormat {
			return issue.Message
		}
	}
	return ""
}

func (f *Filler) promptSingle(ctx context.Context, label string, field model.Field, current model.Value, required bool) (model.Value, error) {
	options := append([]string(nil), field.Options...)
	if !required {
		options = append([]string{BlankOption}, options...)
	}
	choice, err := f.driver.Choose(ctx, ChoicePrompt{
		Label:   label,
		Options: options,
		Default: current.Text,
	})
	if err != nil {
		return model.Value{}, err
	}
	if !offered(options, choice) {
		return model.Value{}, fmt.Errorf("%w: %q for %s", ErrInvalidChoice, choice, field.ID.Key())
	}
	if choice == BlankOption {
		return model.Text(""), nil
	}
	return model.Text(choice), nil
}

func (f *Filler) promptMulti(ctx context.Context, label string, field model.Field, current model.Value) (model.Value, error) {
	choices, err := f.driver.ChooseMany(ctx, ChoicePrompt{
		Label:    label,
		Options:  field.Options,
		Defaults: current.Items,
	})
	if err != nil {
		return model.Value{}, err
	}
	for _, choice := range choices {
		if !offered(field.Options, choice) {
			return model.Value{}, fmt.Errorf("%w: %q for %s", ErrInvalidChoice, choice, field.ID.Key())
		}
	}
	return model.Set(choices...), nil
}

func (f *Filler) promptText(ctx context.Context, label string, field model.Field, current model.Value) (model.Value, error) {
	prompt := TextPrompt{Label: label, Default: current.Text}
	if field.Kind == model.KindDate {
		prompt.Hint = "YYYY-MM-DD"
		prompt.Check = validDate
	}
	text, err := f.driver.Text(ctx, prompt)
	if err != nil {
		return model.Value{}, err
	}
	return model.Text(strings.TrimSpace(text)), nil
}

func validDate(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", text); err != nil {
		return errors.New("enter the date as YYYY-MM-DD")
	}
	return nil
}

// promptJobSeekers asks for the number of job seeker blocks once the group
// opens. An already built group is kept.
func (f *Filler) promptJobSeekers(ctx context.Context, form *census.Form) error {
	if !census.JobSeekingOpen(form.Value(census.FieldJobSeeking).Text) {
		return nil
	}
	if form.Count(model.GroupJobSeeker) > 0 {
		return nil
	}
	limit := form.Max(model.GroupJobSeeker)
	answer, err := f.driver.Text(ctx, TextPrompt{
		Label:   fmt.Sprintf("How many job seekers? (0-%d)", limit),
		Default: "1",
		Check: func(text string) error {
			n, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil || n < 0 || n > limit {
				return fmt.Errorf("enter a number between 0 and %d", limit)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 0 || n > limit {
		return fmt.Errorf("%w: %q job seekers", ErrInvalidChoice, answer)
	}
	for i := 0; i < n; i++ {
		if err := form.AddJobSeeker(); err != nil {
			return fmt.Errorf("tui: add job seeker: %w", err)
		}
	}
	return nil
}

func (f *Filler) saveDraft(ctx context.Context, form *census.Form) {
	if f.drafts == nil {
		return
	}
	if f.drafts.Save(ctx, form.Snapshot()) {
		f.logger.V(1).Info("draft saved", "step", form.Step())
	}
}

func (f *Filler) say(ctx context.Context, prefix, msg string) {
	if prefix != "" {
		msg = prefix + " " + msg
	}
	if err := f.driver.Say(ctx, msg); err != nil {
		f.logger.Error(err, "tui: print message")
	}
}
