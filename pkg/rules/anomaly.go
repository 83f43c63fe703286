package rules

import (
	"github.com/goliatone/go-census/pkg/age"
	"github.com/goliatone/go-census/pkg/model"
)

// AgeAnomaly flags every child at least as old as the youngest parent with a
// known age. The flag is a warning and never affects requirement.
type AgeAnomaly struct {
	Parents []string
	Birth   string
	Warning string
}

// Name implements Rule.
func (a *AgeAnomaly) Name() string { return "age-anomaly" }

// Triggers implements Rule.
func (a *AgeAnomaly) Triggers(id model.Identity) bool {
	if id.Group == model.GroupChild {
		return id.Name == a.Birth
	}
	if id.Group != model.GroupNone {
		return false
	}
	for _, parent := range a.Parents {
		if id.Name == parent {
			return true
		}
	}
	return false
}

// Evaluate implements Rule. All children are recomputed regardless of which
// birth date changed.
func (a *AgeAnomaly) Evaluate(_ model.Identity, state *model.FormState, env Env) Delta {
	var d Delta
	today := env.today()

	var parents []int
	for _, parent := range a.Parents {
		if years, ok := age.Of(state.Text(model.Household(parent)), today); ok {
			parents = append(parents, years)
		}
	}

	for n := 1; n <= env.count(model.GroupChild); n++ {
		years, ok := age.Of(state.Text(model.Child(n, a.Birth)), today)
		d.Warn(model.Child(n, a.Warning), ok && age.Anomaly(years, parents...))
	}
	return d
}
