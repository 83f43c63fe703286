package rules

import (
	"strings"

	"github.com/goliatone/go-census/pkg/model"
)

// MaritalGate is the three-way household gate of the spouse section. The
// section is fully shown for Full, restricted to its leading Partial fields
// for PartialValue (with DefaultField filled when empty), and hidden and
// cleared for any other value.
type MaritalGate struct {
	Trigger      string
	Full         string
	PartialValue string
	Partial      int
	Fields       []Target
	// Gated fields are hidden with the section but shown by their own rules.
	Gated []string
	// DefaultField receives DefaultValue when the partial section opens empty.
	DefaultField string
	DefaultValue string
}

// Name implements Rule.
func (g *MaritalGate) Name() string { return "marital-status" }

// Triggers implements Rule.
func (g *MaritalGate) Triggers(id model.Identity) bool {
	return id.Group == model.GroupNone && id.Name == g.Trigger
}

// Evaluate implements Rule.
func (g *MaritalGate) Evaluate(trigger model.Identity, state *model.FormState, _ Env) Delta {
	var d Delta
	status := strings.TrimSpace(state.Text(trigger))

	switch status {
	case g.Full:
		for _, field := range g.Fields {
			d.Show(model.Household(field.Name), field.Required)
		}
	case g.PartialValue:
		for i, field := range g.Fields {
			id := model.Household(field.Name)
			if i < g.Partial {
				d.Show(id, field.Required)
				continue
			}
			d.Hide(id)
		}
		for _, name := range g.Gated {
			d.Hide(model.Household(name))
		}
		if g.DefaultField != "" {
			d.Default(model.Household(g.DefaultField), model.Text(g.DefaultValue))
		}
	default:
		for _, field := range g.Fields {
			d.Hide(model.Household(field.Name))
		}
		for _, name := range g.Gated {
			d.Hide(model.Household(name))
		}
	}
	return d
}
