// Package rules implements the visibility and requirement rule engine. Rules
// are pure: they read an explicit model.FormState and return a Delta that the
// session applies.
package rules

import (
	"time"

	"github.com/goliatone/go-census/pkg/model"
)

// Rule reacts to changes of the fields it triggers on.
type Rule interface {
	Name() string
	Triggers(id model.Identity) bool
	Evaluate(trigger model.Identity, state *model.FormState, env Env) Delta
}

// Env carries the inputs rules need besides field values.
type Env struct {
	Today time.Time
	// Count reports the number of blocks currently built for a group.
	Count func(model.Group) int
}

func (e Env) count(group model.Group) int {
	if e.Count == nil {
		return 0
	}
	return e.Count(group)
}

func (e Env) today() time.Time {
	if e.Today.IsZero() {
		return time.Now()
	}
	return e.Today
}

// Engine evaluates every rule triggered by a field change, in declaration
// order.
type Engine struct {
	rules []Rule
}

// New constructs an engine from rules.
func New(rules ...Rule) *Engine {
	return &Engine{rules: append([]Rule(nil), rules...)}
}

// Triggers reports whether any rule reacts to id.
func (e *Engine) Triggers(id model.Identity) bool {
	for _, rule := range e.rules {
		if rule.Triggers(id) {
			return true
		}
	}
	return false
}

// Apply evaluates the rules triggered by trigger and merges their deltas.
func (e *Engine) Apply(trigger model.Identity, state *model.FormState, env Env) Delta {
	var out Delta
	for _, rule := range e.rules {
		if !rule.Triggers(trigger) {
			continue
		}
		out.Merge(rule.Evaluate(trigger, state, env))
	}
	return out
}

// Target is a field governed by a rule, named relative to the trigger's block.
type Target struct {
	Name     string
	Required bool
}

// Targets builds optional targets from names.
func Targets(names ...string) []Target {
	out := make([]Target, 0, len(names))
	for _, name := range names {
		out = append(out, Target{Name: name})
	}
	return out
}
