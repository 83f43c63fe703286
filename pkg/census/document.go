package census

import (
	"fmt"

	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/render"
	"github.com/goliatone/go-census/pkg/validation"
)

// Document assembles what the review step presents: the review itself, the
// missing-field summary of a failed report and the raised warnings.
func (f *Form) Document(report validation.Report) render.Document {
	doc := render.Document{
		Title:  StepNames[f.cfg.TotalSteps],
		Review: f.Review(),
	}
	if !report.OK {
		doc.Missing = f.Summary(report)
	}
	var warnings []string
	for _, warning := range f.Warnings() {
		if warning.ID.Group == model.GroupChild {
			warnings = append(warnings, fmt.Sprintf("Child %d: %s", warning.ID.Position, warning.Message))
			continue
		}
		warnings = append(warnings, warning.Message)
	}
	doc.Warnings = render.MergeMessages(nil, warnings...)
	return doc
}
