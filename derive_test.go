package symdiff_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	symdiff "github.com/njchilds90/symdiff"
)

// ============================================================
// Differentiator tests
// ============================================================

func mustParse(t *testing.T, src string) symdiff.Expr {
	t.Helper()
	e, err := symdiff.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString(%q): %v", src, err)
	}
	return e
}

func rules(steps []symdiff.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Rule
	}
	return out
}

func TestDerive_RawTrees(t *testing.T) {
	N := symdiff.N
	tests := []struct {
		src  string
		want symdiff.Expr
	}{
		{"5", N(0)},
		{"x", N(1)},
		{"y", N(0)},
		{"x^2", symdiff.MulOf(N(2), symdiff.PowOf(x, N(1)))},
		{"x^-2", symdiff.MulOf(N(-2), symdiff.PowOf(x, N(-3)))},
		{"sin(x)", symdiff.MulOf(symdiff.CallOf("cos", x), N(1))},
		{"cos(x)", symdiff.MulOf(symdiff.NegOf(symdiff.CallOf("sin", x)), N(1))},
		{"ln(x)", symdiff.DivOf(N(1), x)},
		{"x*x", symdiff.AddOf(symdiff.MulOf(N(1), x), symdiff.MulOf(x, N(1)))},
		{"-x", symdiff.NegOf(N(1))},
		{"x - 3", symdiff.SubOf(N(1), N(0))},
		{"1/x", symdiff.DivOf(
			symdiff.SubOf(symdiff.MulOf(N(0), x), symdiff.MulOf(N(1), N(1))),
			symdiff.PowOf(x, N(2)))},
	}
	for _, tt := range tests {
		got, _, err := symdiff.Derive(mustParse(t, tt.src), "x")
		if err != nil {
			t.Errorf("Derive(%q): unexpected error: %v", tt.src, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Derive(%q) mismatch (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestDerive_StepOrder(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"x^2", []string{symdiff.RulePower}},
		{"sin(x)", []string{symdiff.RuleVariable, symdiff.RuleChain}},
		{"x*x", []string{symdiff.RuleProductPrep, symdiff.RuleVariable, symdiff.RuleVariable, symdiff.RuleProduct}},
		{"1/x", []string{symdiff.RuleQuotientPrep, symdiff.RuleConstant, symdiff.RuleVariable, symdiff.RuleQuotient}},
		{"x + 1", []string{symdiff.RuleVariable, symdiff.RuleConstant, symdiff.RuleSum}},
		{"-x", []string{symdiff.RuleVariable, symdiff.RuleNegative}},
		{"(x+1)^3", []string{symdiff.RuleVariable, symdiff.RuleConstant, symdiff.RuleSum, symdiff.RulePower}},
		{"x^x", []string{
			symdiff.RuleGeneralPowerPrep,
			symdiff.RuleProductPrep,
			symdiff.RuleVariable,
			symdiff.RuleVariable,
			symdiff.RuleChain,
			symdiff.RuleProduct,
			symdiff.RuleGeneralPower,
		}},
	}
	for _, tt := range tests {
		_, steps, err := symdiff.Derive(mustParse(t, tt.src), "x")
		if err != nil {
			t.Errorf("Derive(%q): unexpected error: %v", tt.src, err)
			continue
		}
		if diff := cmp.Diff(tt.want, rules(steps)); diff != "" {
			t.Errorf("Derive(%q) rules mismatch (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestDerive_PreparationStepIsUnchanged(t *testing.T) {
	e := mustParse(t, "x*sin(x)")
	_, steps, err := symdiff.Derive(e, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := steps[0]
	if first.Rule != symdiff.RuleProductPrep {
		t.Fatalf("want first step %q, got %q", symdiff.RuleProductPrep, first.Rule)
	}
	if !symdiff.Equal(first.Before, e) || !symdiff.Equal(first.After, e) {
		t.Errorf("preparation step should relate the node to itself, got %s -> %s", first.Before, first.After)
	}
	last := steps[len(steps)-1]
	if last.Rule != symdiff.RuleProduct || !symdiff.Equal(last.Before, e) {
		t.Errorf("last step should be the product rule on the root, got %s on %s", last.Rule, last.Before)
	}
}

func TestDerive_UnitChain(t *testing.T) {
	en := symdiff.New(symdiff.WithUnitChain(true))
	got, steps, err := en.Derive(mustParse(t, "x^2"), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := symdiff.MulOf(symdiff.MulOf(symdiff.N(2), symdiff.PowOf(x, symdiff.N(1))), symdiff.N(1))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{symdiff.RuleVariable, symdiff.RulePower}, rules(steps)); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
	if got := symdiff.Render(symdiff.Simplify(got)); got != "2 x" {
		t.Errorf("simplified: want 2 x, got %s", got)
	}
}

func TestDerive_OtherVariable(t *testing.T) {
	got, _, err := symdiff.Derive(mustParse(t, "x*y"), "y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := symdiff.Render(symdiff.Simplify(got)); s != "x" {
		t.Errorf("d/dy(x*y): want x, got %s", s)
	}
}

func TestDerive_UnsupportedFunction(t *testing.T) {
	for _, src := range []string{"sec(x)", "sgn(x)", "2 + sec(x^2)"} {
		_, _, err := symdiff.Derive(mustParse(t, src), "x")
		var fnErr *symdiff.UnsupportedFunctionError
		if !errors.As(err, &fnErr) {
			t.Errorf("Derive(%q): want *UnsupportedFunctionError, got %v", src, err)
			continue
		}
		if symdiff.ErrorKind(err) != symdiff.KindUnsupportedFunction {
			t.Errorf("ErrorKind: want %s, got %s", symdiff.KindUnsupportedFunction, symdiff.ErrorKind(err))
		}
	}

	_, _, err := symdiff.Derive(symdiff.CallOf("erf", x), "x")
	var fnErr *symdiff.UnsupportedFunctionError
	if !errors.As(err, &fnErr) || fnErr.Name != "erf" {
		t.Errorf("want unsupported erf, got %v", err)
	}
}

func TestDerive_TooDeep(t *testing.T) {
	en := symdiff.New(symdiff.WithMaxDepth(3))
	e := symdiff.NegOf(symdiff.NegOf(symdiff.NegOf(x)))
	if _, _, err := en.Derive(e, "x"); !errors.Is(err, symdiff.ErrTooDeep) {
		t.Errorf("want ErrTooDeep, got %v", err)
	}
	if _, _, err := en.Derive(symdiff.NegOf(symdiff.NegOf(x)), "x"); err != nil {
		t.Errorf("depth 3 should succeed, got %v", err)
	}
}

func TestDerive_LongPolynomial(t *testing.T) {
	terms := make([]string, 300)
	for i := range terms {
		terms[i] = fmt.Sprintf("x^%d", i+1)
	}
	d, err := symdiff.New().Differentiate(strings.Join(terms, " + "), "x")
	if err != nil {
		t.Fatalf("300-term polynomial: %v", err)
	}
	if !strings.HasPrefix(d.LaTeX, "2 x + 3 x^{2} + ") || !strings.HasSuffix(d.LaTeX, " + 300 x^{299} + 1") {
		t.Errorf("unexpected derivative %.60s...", d.LaTeX)
	}

	product := strings.TrimSuffix(strings.Repeat("x*", 300), "*")
	if _, err := symdiff.New().Differentiate(product, "x"); err != nil {
		t.Errorf("300-factor product: %v", err)
	}
}

func TestDerive_AcceptsWhatParseAccepts(t *testing.T) {
	en := symdiff.New(symdiff.WithMaxDepth(4))
	for _, src := range []string{
		"x + x^2 + x^3 + x^4 + x^5 + x^6",
		"x*x*x*x*x*x",
		"((x+1)*(x-1))^2",
		"-(-(x))",
		"sin(cos(x))",
		"x^x^x^x^x",
		"2^(x*(x+1))",
		"ln(x)^(x+1)",
		"x/(x/(x+1))",
	} {
		e, err := en.ParseString(src)
		if err != nil {
			continue
		}
		if _, _, err := en.Derive(e, "x"); err != nil {
			t.Errorf("Derive(%q) after a successful parse: %v", src, err)
		}
	}

	deep := strings.Repeat("sin(", 4) + "x" + strings.Repeat(")", 4)
	if _, err := en.ParseString(deep); !errors.Is(err, symdiff.ErrTooDeep) {
		t.Errorf("ParseString(%q): want ErrTooDeep, got %v", deep, err)
	}
	if _, _, err := en.Derive(mustParse(t, deep), "x"); !errors.Is(err, symdiff.ErrTooDeep) {
		t.Errorf("Derive(%q): want ErrTooDeep, got %v", deep, err)
	}
}

func TestIsDifferentiable(t *testing.T) {
	for _, name := range []string{"sin", "cos", "tan", "ln", "log", "exp", "sqrt", "abs"} {
		if !symdiff.IsDifferentiable(name) {
			t.Errorf("%s should be differentiable", name)
		}
	}
	for _, name := range []string{"sec", "sgn", "erf"} {
		if symdiff.IsDifferentiable(name) {
			t.Errorf("%s should not be differentiable", name)
		}
	}
}
