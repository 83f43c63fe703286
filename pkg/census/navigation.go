package census

import (
	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/validation"
)

// Step returns the current 1-based step.
func (f *Form) Step() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// StepStatus returns the mark left on step when it was last left.
func (f *Form) StepStatus(step int) StepStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[step]
}

// Next moves forward one step. With step validation enabled the current
// step is checked first; the report is returned but never blocks unless
// every field is mandatory.
func (f *Form) Next() (validation.StepReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return validation.StepReport{}, ErrLocked
	}
	report := validation.StepReport{Step: f.step}
	if f.cfg.Features.StepValidation {
		report = f.validator.CheckStep(subject{f}, f.step)
		if f.cfg.Features.RequireAllFields && report.Incomplete > 0 {
			return report, ErrStepIncomplete
		}
	}
	f.goTo(f.step + 1)
	return report, nil
}

// Prev moves back one step.
func (f *Form) Prev() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return ErrLocked
	}
	f.goTo(f.step - 1)
	return nil
}

// Goto jumps to step n, clamped to the configured range.
func (f *Form) Goto(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return ErrLocked
	}
	f.goTo(n)
	return nil
}

func (f *Form) goTo(n int) {
	total := f.cfg.TotalSteps
	if total < 1 {
		total = 1
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	if n == f.step {
		return
	}

	f.status[f.step] = StepCompleted
	if f.validator.Incomplete(subject{f}, f.step) {
		f.status[f.step] = StepIncomplete
	}
	f.step = n
}

// CheckStep runs the soft completeness pass over step.
func (f *Form) CheckStep(step int) validation.StepReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validator.CheckStep(subject{f}, step)
}

// CheckAll runs the blocking pass over the whole form. On failure the form
// moves to the first step with a problem and focuses its first field.
func (f *Form) CheckAll() validation.Report {
	f.mu.Lock()
	defer f.mu.Unlock()

	report := f.validator.CheckAll(subject{f})
	if report.OK {
		f.focus = model.Identity{}
		return report
	}
	if !f.locked {
		f.goTo(report.FirstStep)
	}
	f.focus = report.FirstField
	return report
}

// Summary groups the failing labels of report by step for display.
func (f *Form) Summary(report validation.Report) []validation.StepSummary {
	return f.validator.Summary(report)
}

// Focus returns the wire key of the field focused by the last failed
// CheckAll, or "".
func (f *Form) Focus() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.focus == (model.Identity{}) {
		return ""
	}
	return f.focus.Key()
}
