package rules

import (
	"fmt"

	"github.com/goliatone/go-census/pkg/model"
	"github.com/goliatone/go-census/pkg/visibility"
	"github.com/goliatone/go-census/pkg/visibility/expr"
)

// Gate shows its targets while a condition over the trigger's scope holds and
// hides and clears them otherwise. Conditions use the visibility/expr language
// and see the values of the trigger's block keyed by field name.
type Gate struct {
	name      string
	group     model.Group
	trigger   string
	condition visibility.Program
	targets   []Target
}

// NewGate compiles condition and returns a gate reacting to changes of the
// field named trigger inside group.
func NewGate(name string, group model.Group, trigger, condition string, targets ...Target) (*Gate, error) {
	program, err := expr.New().Compile(condition)
	if err != nil {
		return nil, fmt.Errorf("rules: gate %s: %w", name, err)
	}
	return &Gate{
		name:      name,
		group:     group,
		trigger:   trigger,
		condition: program,
		targets:   append([]Target(nil), targets...),
	}, nil
}

// MustGate is NewGate for rules declared in code.
func MustGate(name string, group model.Group, trigger, condition string, targets ...Target) *Gate {
	gate, err := NewGate(name, group, trigger, condition, targets...)
	if err != nil {
		panic(err)
	}
	return gate
}

// OtherSpecify is the gate of an auxiliary free-text field that is required
// while the governing choice is "Other". Multi-selects match by membership.
func OtherSpecify(group model.Group, trigger, specify string, multi bool) *Gate {
	condition := fmt.Sprintf("%s == %q", trigger, OtherOption)
	if multi {
		condition = fmt.Sprintf("%s has %q", trigger, OtherOption)
	}
	return MustGate(trigger+"-other", group, trigger, condition, Target{Name: specify, Required: true})
}

// OtherOption is the literal option that asks for a free-text specification.
const OtherOption = "Other"

// Name implements Rule.
func (g *Gate) Name() string { return g.name }

// Triggers implements Rule.
func (g *Gate) Triggers(id model.Identity) bool {
	return id.Group == g.group && id.Name == g.trigger
}

// Evaluate implements Rule.
func (g *Gate) Evaluate(trigger model.Identity, state *model.FormState, env Env) Delta {
	var d Delta
	ok, err := g.condition.Eval(scopeContext(trigger, state))
	for _, target := range g.targets {
		id := trigger.Sibling(target.Name)
		if ok && err == nil {
			d.Show(id, target.Required)
			continue
		}
		d.Hide(id)
	}
	return d
}

func scopeContext(trigger model.Identity, state *model.FormState) visibility.Context {
	block := state.Block(trigger)
	values := make(map[string]any, len(block))
	for name, v := range block {
		values[name] = v.Interface()
	}
	return visibility.Context{Values: values}
}
