package rules

import (
	"github.com/goliatone/go-census/pkg/age"
	"github.com/goliatone/go-census/pkg/model"
)

// Threshold shows fields once the block's age reaches Min. Cascade lists
// fields that are hidden alongside but never shown by this threshold; they
// have gates of their own.
type Threshold struct {
	Min     int
	Show    []Target
	Cascade []string
}

// AgeGate derives an age from a birth-date field and gates block fields on
// it. A blank or unparseable date hides and clears every governed field.
type AgeGate struct {
	name       string
	group      model.Group
	birth      string
	thresholds []Threshold
}

// NewAgeGate returns an age gate reacting to the birth-date field of group.
func NewAgeGate(name string, group model.Group, birth string, thresholds ...Threshold) *AgeGate {
	return &AgeGate{
		name:       name,
		group:      group,
		birth:      birth,
		thresholds: append([]Threshold(nil), thresholds...),
	}
}

// Name implements Rule.
func (g *AgeGate) Name() string { return g.name }

// Triggers implements Rule.
func (g *AgeGate) Triggers(id model.Identity) bool {
	return id.Group == g.group && id.Name == g.birth
}

// Evaluate implements Rule.
func (g *AgeGate) Evaluate(trigger model.Identity, state *model.FormState, env Env) Delta {
	var d Delta
	years, known := age.Of(state.Text(trigger), env.today())
	for _, threshold := range g.thresholds {
		if known && years >= threshold.Min {
			for _, target := range threshold.Show {
				d.Show(trigger.Sibling(target.Name), target.Required)
			}
			continue
		}
		for _, target := range threshold.Show {
			d.Hide(trigger.Sibling(target.Name))
		}
		for _, name := range threshold.Cascade {
			d.Hide(trigger.Sibling(name))
		}
	}
	return d
}
