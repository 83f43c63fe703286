package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// TextPrompt asks for one line of free text.
type TextPrompt struct {
	Label   string
	Default string
	Hint    string
	// Check rejects an answer before it leaves the terminal. Nil accepts
	// everything.
	Check func(string) error
}

// ChoicePrompt asks for one or more of Options. Default seeds a single
// choice, Defaults a multiple choice.
type ChoicePrompt struct {
	Label    string
	Options  []string
	Default  string
	Defaults []string
}

// PromptDriver is the terminal seen by the Filler. Choices come back as the
// option text, never as positions.
type PromptDriver interface {
	Text(ctx context.Context, p TextPrompt) (string, error)
	Confirm(ctx context.Context, label string, def bool) (bool, error)
	Choose(ctx context.Context, p ChoicePrompt) (string, error)
	ChooseMany(ctx context.Context, p ChoicePrompt) ([]string, error)
	Say(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out      io.Writer
	pageSize int
}

// NewSurveyDriver returns a PromptDriver backed by survey. Plain messages go
// to out, stdout when nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out, pageSize: 12}
}

func (d *surveyDriver) Text(ctx context.Context, p TextPrompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var opts []survey.AskOpt
	if check := p.Check; check != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return check(s)
		}))
	}
	var answer string
	err := survey.AskOne(&survey.Input{Message: p.Label, Default: p.Default, Help: p.Hint}, &answer, opts...)
	return answer, surveyErr(err)
}

func (d *surveyDriver) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var answer bool
	err := survey.AskOne(&survey.Confirm{Message: label, Default: def}, &answer)
	return answer, surveyErr(err)
}

func (d *surveyDriver) Choose(ctx context.Context, p ChoicePrompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prompt := &survey.Select{Message: p.Label, Options: p.Options, PageSize: d.pageSize}
	if offered(p.Options, p.Default) {
		prompt.Default = p.Default
	}
	var answer string
	err := survey.AskOne(prompt, &answer)
	return answer, surveyErr(err)
}

func (d *surveyDriver) ChooseMany(ctx context.Context, p ChoicePrompt) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompt := &survey.MultiSelect{Message: p.Label, Options: p.Options, PageSize: d.pageSize}
	var defaults []string
	for _, choice := range p.Defaults {
		if offered(p.Options, choice) {
			defaults = append(defaults, choice)
		}
	}
	if len(defaults) > 0 {
		prompt.Default = defaults
	}
	var answer []string
	err := survey.AskOne(prompt, &answer)
	return answer, surveyErr(err)
}

func (d *surveyDriver) Say(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// surveyErr maps Ctrl-C to ErrAborted.
func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func offered(options []string, choice string) bool {
	for _, option := range options {
		if option == choice {
			return true
		}
	}
	return false
}
