package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-census/pkg/visibility"
)

// Evaluator compiles gate conditions written in a small boolean language:
//
//	spouse_dob                  value is non-blank (sets: non-empty)
//	!head_mobile                negation
//	marital_status == "Married" equality, single quotes and bare words too
//	rite != 'Other'
//	missing == null             unset
//	extras.age >= 18            numeric ordering: < <= > >=
//	illness has "Other"         set membership, equality for scalars
//	(a || b) && !c              composition
//
// Names resolve against Context.Values, descending into nested maps on dots,
// or against Context.Extras when prefixed with "extras.".
type Evaluator struct{}

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval compiles and evaluates condition in one go. An empty condition holds.
func (e *Evaluator) Eval(condition string, ctx visibility.Context) (bool, error) {
	program, err := e.Compile(condition)
	if err != nil {
		return false, err
	}
	return program.Eval(ctx)
}

// Compile parses condition into a reusable program.
func (e *Evaluator) Compile(condition string) (visibility.Program, error) {
	source := strings.TrimSpace(condition)
	if source == "" {
		return program{test: func(visibility.Context) bool { return true }}, nil
	}
	lexemes, err := scan(source)
	if err != nil {
		return nil, err
	}
	p := &parser{lex: lexemes}
	test, err := p.disjunction()
	if err != nil {
		return nil, err
	}
	if p.peek().sym != symEOF {
		return nil, p.unexpected("an operator or the end of the condition")
	}
	return program{test: test, source: source}, nil
}

// MustCompile is Compile for conditions declared in code. It panics on syntax
// errors.
func MustCompile(condition string) visibility.Program {
	program, err := New().Compile(condition)
	if err != nil {
		panic(fmt.Sprintf("expr: compile %q: %v", condition, err))
	}
	return program
}

type predicate func(visibility.Context) bool

type program struct {
	test   predicate
	source string
}

func (p program) Eval(ctx visibility.Context) (bool, error) { return p.test(ctx), nil }

func (p program) String() string { return p.source }

type symbol int

const (
	symEOF symbol = iota
	symName
	symText
	symNumber
	symTrue
	symFalse
	symNull
	symEq
	symNe
	symLt
	symLe
	symGt
	symGe
	symHas
	symAnd
	symOr
	symNot
	symOpen
	symClose
)

type lexeme struct {
	sym  symbol
	text string
	pos  int
}

// Two character operators come first so "<=" is not read as "<".
var operators = []struct {
	text string
	sym  symbol
}{
	{"==", symEq},
	{"!=", symNe},
	{"<=", symLe},
	{">=", symGe},
	{"&&", symAnd},
	{"||", symOr},
	{"<", symLt},
	{">", symGt},
	{"!", symNot},
	{"(", symOpen},
	{")", symClose},
}

const wordStop = " \t\r\n()!=&|<>\"'"

func scan(src string) ([]lexeme, error) {
	var out []lexeme
	pos := 0
next:
	for pos < len(src) {
		c := src[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			pos++
			continue
		case c == '"' || c == '\'':
			text, n, err := scanQuoted(src[pos:])
			if err != nil {
				return nil, fmt.Errorf("%w at offset %d", err, pos)
			}
			out = append(out, lexeme{sym: symText, text: text, pos: pos})
			pos += n
			continue
		}
		for _, op := range operators {
			if strings.HasPrefix(src[pos:], op.text) {
				out = append(out, lexeme{sym: op.sym, text: op.text, pos: pos})
				pos += len(op.text)
				continue next
			}
		}
		if strings.IndexByte(wordStop, c) >= 0 {
			return nil, fmt.Errorf("expr: stray %q at offset %d (use ==, && or ||)", c, pos)
		}
		end := pos
		for end < len(src) && strings.IndexByte(wordStop, src[end]) < 0 {
			end++
		}
		word := src[pos:end]
		out = append(out, lexeme{sym: classify(word), text: word, pos: pos})
		pos = end
	}
	return append(out, lexeme{sym: symEOF, pos: len(src)}), nil
}

// scanQuoted reads the literal opening s and returns its text and the bytes
// consumed, quotes included.
func scanQuoted(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errors.New("expr: unterminated string")
}

func classify(word string) symbol {
	switch strings.ToLower(word) {
	case "true":
		return symTrue
	case "false":
		return symFalse
	case "null", "nil":
		return symNull
	case "has":
		return symHas
	}
	if c := word[0]; (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' {
		if _, err := strconv.ParseFloat(word, 64); err == nil {
			return symNumber
		}
	}
	return symName
}

type parser struct {
	lex []lexeme
	at  int
}

func (p *parser) peek() lexeme { return p.lex[p.at] }

func (p *parser) accept(sym symbol) bool {
	if p.lex[p.at].sym != sym {
		return false
	}
	p.at++
	return true
}

func (p *parser) unexpected(want string) error {
	got := p.peek()
	if got.sym == symEOF {
		return fmt.Errorf("expr: expected %s, condition ended", want)
	}
	return fmt.Errorf("expr: expected %s at offset %d, found %q", want, got.pos, got.text)
}

func (p *parser) disjunction() (predicate, error) {
	left, err := p.conjunction()
	if err != nil {
		return nil, err
	}
	for p.accept(symOr) {
		right, err := p.conjunction()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(ctx visibility.Context) bool { return l(ctx) || right(ctx) }
	}
	return left, nil
}

func (p *parser) conjunction() (predicate, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(symAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(ctx visibility.Context) bool { return l(ctx) && right(ctx) }
	}
	return left, nil
}

func (p *parser) unary() (predicate, error) {
	if !p.accept(symNot) {
		return p.primary()
	}
	inner, err := p.unary()
	if err != nil {
		return nil, err
	}
	return func(ctx visibility.Context) bool { return !inner(ctx) }, nil
}

func (p *parser) primary() (predicate, error) {
	if p.accept(symOpen) {
		inner, err := p.disjunction()
		if err != nil {
			return nil, err
		}
		if !p.accept(symClose) {
			return nil, p.unexpected("')'")
		}
		return inner, nil
	}

	name := p.peek()
	if name.sym != symName {
		return nil, p.unexpected("a field name")
	}
	p.at++
	get := resolver(name.text)

	op := p.peek()
	switch op.sym {
	case symEq, symNe, symLt, symLe, symGt, symGe, symHas:
		p.at++
	default:
		return func(ctx visibility.Context) bool { return filled(get(ctx)) }, nil
	}

	operand := p.peek()
	switch operand.sym {
	case symText, symName, symNumber, symTrue, symFalse, symNull:
		p.at++
	default:
		return nil, p.unexpected("a value after " + op.text)
	}
	return compare(get, op, operand)
}

func compare(get func(visibility.Context) any, op, operand lexeme) (predicate, error) {
	switch op.sym {
	case symHas:
		return func(ctx visibility.Context) bool { return member(get(ctx), operand.text) }, nil
	case symLt, symLe, symGt, symGe:
		if operand.sym != symNumber {
			return nil, fmt.Errorf("expr: %s needs a number, found %q", op.text, operand.text)
		}
		want, _ := strconv.ParseFloat(operand.text, 64)
		return func(ctx visibility.Context) bool {
			got, ok := number(get(ctx))
			return ok && order(op.sym, got, want)
		}, nil
	}

	var same func(any) bool
	switch operand.sym {
	case symNull:
		same = func(v any) bool { return v == nil }
	case symTrue, symFalse:
		want := operand.sym == symTrue
		same = func(v any) bool { return boolean(v) == want }
	case symNumber:
		want, _ := strconv.ParseFloat(operand.text, 64)
		same = func(v any) bool {
			got, ok := number(v)
			return ok && got == want
		}
	default:
		same = func(v any) bool { return text(v) == operand.text }
	}
	if op.sym == symNe {
		return func(ctx visibility.Context) bool { return !same(get(ctx)) }, nil
	}
	return func(ctx visibility.Context) bool { return same(get(ctx)) }, nil
}

func order(sym symbol, got, want float64) bool {
	switch sym {
	case symLt:
		return got < want
	case symLe:
		return got <= want
	case symGt:
		return got > want
	default:
		return got >= want
	}
}

const extrasPrefix = "extras."

func resolver(path string) func(visibility.Context) any {
	if len(path) > len(extrasPrefix) && strings.EqualFold(path[:len(extrasPrefix)], extrasPrefix) {
		rest := path[len(extrasPrefix):]
		return func(ctx visibility.Context) any { return dig(ctx.Extras, rest) }
	}
	return func(ctx visibility.Context) any { return dig(ctx.Values, path) }
}

// dig prefers an exact key and falls back to walking nested maps.
func dig(values map[string]any, path string) any {
	if v, ok := values[path]; ok {
		return v
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = node[part]; !ok {
			return nil
		}
	}
	return current
}

func member(value any, item string) bool {
	switch v := value.(type) {
	case nil:
		return false
	case []string:
		for _, candidate := range v {
			if candidate == item {
				return true
			}
		}
		return false
	case []any:
		for _, candidate := range v {
			if text(candidate) == item {
				return true
			}
		}
		return false
	default:
		return text(value) == item
	}
}

func filled(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func boolean(value any) bool {
	if s, ok := value.(string); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return parsed
		}
	}
	return filled(value)
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
