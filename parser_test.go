package symdiff_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	symdiff "github.com/njchilds90/symdiff"
)

// ============================================================
// Parser tests
// ============================================================

var (
	x = symdiff.V("x")
	y = symdiff.V("y")
)

func TestParse_Precedence(t *testing.T) {
	N, V := symdiff.N, symdiff.V
	tests := []struct {
		src  string
		want symdiff.Expr
	}{
		{"1+2*3", symdiff.AddOf(N(1), symdiff.MulOf(N(2), N(3)))},
		{"a-b-c", symdiff.SubOf(symdiff.SubOf(V("a"), V("b")), V("c"))},
		{"x/y/z", symdiff.DivOf(symdiff.DivOf(x, y), V("z"))},
		{"2^3^2", symdiff.PowOf(symdiff.PowOf(N(2), N(3)), N(2))},
		{"-x^2", symdiff.PowOf(symdiff.NegOf(x), N(2))},
		{"2x^2", symdiff.MulOf(N(2), symdiff.PowOf(x, N(2)))},
		{"--x", symdiff.NegOf(symdiff.NegOf(x))},
		{"((x))", x},
		{"sin(x)", symdiff.CallOf("sin", x)},
		{"sinx", V("sinx")},
		{"x^-2", symdiff.PowOf(x, symdiff.NegOf(N(2)))},
		{"2(x+1)", symdiff.MulOf(N(2), symdiff.AddOf(x, N(1)))},
		{"sqrt(x^2 + 1)", symdiff.CallOf("sqrt", symdiff.AddOf(symdiff.PowOf(x, N(2)), N(1)))},
	}
	for _, tt := range tests {
		got, err := symdiff.ParseString(tt.src)
		if err != nil {
			t.Errorf("ParseString(%q): unexpected error: %v", tt.src, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseString(%q) mismatch (-want +got):\n%s", tt.src, diff)
		}
		if !symdiff.Equal(tt.want, got) {
			t.Errorf("Equal(%q) should agree with cmp", tt.src)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src  string
		want symdiff.ParseError
	}{
		{"", symdiff.ParseError{Expected: "expression", Found: "EOF", Pos: 0}},
		{"x+", symdiff.ParseError{Expected: "expression", Found: "EOF", Pos: 2}},
		{"(x", symdiff.ParseError{Expected: "')'", Found: "EOF", Pos: 2}},
		{"x)", symdiff.ParseError{Expected: "end of input", Found: ")", Pos: 1}},
		{"*x", symdiff.ParseError{Expected: "expression", Found: "*", Pos: 0}},
		{"sin(", symdiff.ParseError{Expected: "expression", Found: "EOF", Pos: 4}},
		{"x^)", symdiff.ParseError{Expected: "expression", Found: ")", Pos: 2}},
	}
	for _, tt := range tests {
		_, err := symdiff.ParseString(tt.src)
		var parseErr *symdiff.ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("ParseString(%q): want *ParseError, got %v", tt.src, err)
			continue
		}
		if *parseErr != tt.want {
			t.Errorf("ParseString(%q): want %+v, got %+v", tt.src, tt.want, *parseErr)
		}
	}
}

func TestParse_ErrorMessages(t *testing.T) {
	_, err := symdiff.ParseString("x+")
	if err == nil || !strings.Contains(err.Error(), "end of input") {
		t.Errorf("EOF error should mention end of input, got %v", err)
	}
	_, err = symdiff.ParseString("x)")
	if err == nil || !strings.Contains(err.Error(), `")"`) {
		t.Errorf("error should quote the offending token, got %v", err)
	}
}

func TestParse_TooDeep(t *testing.T) {
	src := strings.Repeat("(", 300) + "x" + strings.Repeat(")", 300)
	_, err := symdiff.ParseString(src)
	if !errors.Is(err, symdiff.ErrTooDeep) {
		t.Fatalf("want ErrTooDeep, got %v", err)
	}
	if symdiff.ErrorKind(err) != symdiff.KindTooDeep {
		t.Errorf("ErrorKind: want %s, got %s", symdiff.KindTooDeep, symdiff.ErrorKind(err))
	}
}

func TestParse_MaxDepthOption(t *testing.T) {
	en := symdiff.New(symdiff.WithMaxDepth(3))
	if _, err := en.ParseString("((x))"); err != nil {
		t.Errorf("depth 3 should parse, got %v", err)
	}
	if _, err := en.ParseString("(((x)))"); !errors.Is(err, symdiff.ErrTooDeep) {
		t.Errorf("depth 4 should fail with ErrTooDeep, got %v", err)
	}
	if _, err := en.ParseString("---x"); !errors.Is(err, symdiff.ErrTooDeep) {
		t.Errorf("stacked unary minus should count toward depth, got %v", err)
	}
	if got := symdiff.New(symdiff.WithMaxDepth(0)).MaxDepth(); got != symdiff.DefaultMaxDepth {
		t.Errorf("WithMaxDepth(0): want %d, got %d", symdiff.DefaultMaxDepth, got)
	}
}

func TestParse_HandBuiltTokens(t *testing.T) {
	tokens := []symdiff.Token{symdiff.NameToken("x"), symdiff.OperatorToken("+"), symdiff.NumberToken(1)}
	got, err := symdiff.Parse(tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "x + 1" {
		t.Errorf("want x + 1, got %s", got.String())
	}
}
