package symdiff

import (
	"io"
	"log/slog"
)

// DefaultMaxDepth bounds parser and differentiator recursion.
const DefaultMaxDepth = 256

// DefaultVariable is used by Differentiate when no variable is given.
const DefaultVariable = "x"

// Engine runs the differentiation pipeline. An Engine is immutable after New
// and safe for concurrent use.
type Engine struct {
	maxDepth  int
	unitChain bool
	logger    *slog.Logger
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithMaxDepth sets the maximum nesting depth accepted by Parse and Derive.
// n <= 0 restores DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			n = DefaultMaxDepth
		}
		e.maxDepth = n
	}
}

// WithUnitChain keeps the trailing u' factor of the power rule even when u is
// the differentiation variable itself, so d/dx x^n is traced as n·x^(n-1)·1.
func WithUnitChain(keep bool) Option {
	return func(e *Engine) {
		e.unitChain = keep
	}
}

// WithLogger sets the logger for debug records. A nil logger disables them.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// MaxDepth returns the configured recursion bound.
func (en *Engine) MaxDepth() int { return en.maxDepth }

// Parse parses tokens into an expression tree.
func (en *Engine) Parse(tokens []Token) (Expr, error) {
	return newParser(tokens, en.maxDepth).parse()
}

// ParseString tokenizes and parses source.
func (en *Engine) ParseString(source string) (Expr, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return en.Parse(tokens)
}

// Derivation is the full result of Differentiate.
type Derivation struct {
	Source     string
	Variable   string
	Input      Expr
	Derivative Expr
	Simplified Expr
	Steps      []Step
	LaTeX      string
}

// Differentiate runs source through every stage: tokenize, parse, derive,
// simplify and render. The returned steps end with a Simplification step
// relating the raw derivative to its simplified form.
func (en *Engine) Differentiate(source, variable string) (*Derivation, error) {
	if variable == "" {
		variable = DefaultVariable
	}
	input, err := en.ParseString(source)
	if err != nil {
		return nil, err
	}
	raw, steps, err := en.Derive(input, variable)
	if err != nil {
		return nil, err
	}
	simplified := Simplify(raw)
	steps = append(steps, SimplificationStep(raw, simplified))
	d := &Derivation{
		Source:     source,
		Variable:   variable,
		Input:      input,
		Derivative: raw,
		Simplified: simplified,
		Steps:      steps,
		LaTeX:      Render(simplified),
	}
	en.logger.Debug("derivation complete",
		slog.String("source", source),
		slog.String("variable", variable),
		slog.Int("steps", len(steps)),
		slog.String("result", d.LaTeX))
	return d, nil
}

// SimplificationStep is the closing step of a derivation trace.
func SimplificationStep(raw, simplified Expr) Step {
	return Step{
		Rule:   RuleSimplification,
		Before: raw,
		After:  simplified,
		Note:   "constants folded, identities removed, like factors and terms combined",
	}
}

// ============================================================
// Package-level API over a default engine
// ============================================================

var defaultEngine = New()

// Parse parses tokens with the default engine.
func Parse(tokens []Token) (Expr, error) { return defaultEngine.Parse(tokens) }

// ParseString tokenizes and parses source with the default engine.
func ParseString(source string) (Expr, error) { return defaultEngine.ParseString(source) }

// Derive differentiates e with respect to variable using the default engine.
func Derive(e Expr, variable string) (Expr, []Step, error) {
	return defaultEngine.Derive(e, variable)
}

// Differentiate runs the whole pipeline with the default engine.
func Differentiate(source, variable string) (*Derivation, error) {
	return defaultEngine.Differentiate(source, variable)
}
