// Package visibility defines the condition language contract used by the
// declarative gates of the rule engine. Conditions are evaluated against the
// values of one scope: the household, or a single repeated block.
package visibility

// Evaluator decides whether a condition holds for the given context.
type Evaluator interface {
	Eval(condition string, ctx Context) (bool, error)
}

// Program is a condition compiled once and evaluated many times.
type Program interface {
	Eval(ctx Context) (bool, error)
}

// Compiler turns condition strings into programs so syntax errors surface when
// rules are declared rather than on the first change event.
type Compiler interface {
	Compile(condition string) (Program, error)
}

// Context provides the inputs of a condition. Values holds the field values of
// the evaluation scope keyed by field name (strings for scalars, []any for
// multi-selects). Extras carries derived inputs such as computed ages and is
// addressed with the `extras.` prefix.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(condition string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(condition string, ctx Context) (bool, error) {
	return fn(condition, ctx)
}

// ProgramFunc adapts a function into a Program.
type ProgramFunc func(ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn ProgramFunc) Eval(ctx Context) (bool, error) {
	return fn(ctx)
}
