// Package symdiff provides a small symbolic differentiation engine for Go.
//
// Design goals:
//   - Text in, TeX out: lexer, parser, differentiator, simplifier, renderer
//   - Every derivative comes with an ordered "show your work" step trace
//   - Pure stages, no package-level mutable state, safe for concurrent use
//   - AI/LLM friendly: JSON trees and an MCP-ready tool surface
package symdiff

import (
	"math"
	"strconv"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of an expression tree. The set of node types is closed:
// Num, Var, Neg, Add, Sub, Mul, Div, Pow and Call. Nodes are never mutated
// after construction.
type Expr interface {
	String() string
	exprType() string
}

// ============================================================
// Num: float64 literal
// ============================================================

type Num struct{ Value float64 }

func N(v float64) *Num { return &Num{Value: v} }

func (n *Num) exprType() string { return "num" }
func (n *Num) String() string   { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// ============================================================
// Var: symbolic variable
// ============================================================

type Var struct{ Name string }

func V(name string) *Var { return &Var{Name: name} }

func (v *Var) exprType() string { return "var" }
func (v *Var) String() string   { return v.Name }

// ============================================================
// Neg: unary minus
// ============================================================

type Neg struct{ X Expr }

func NegOf(x Expr) *Neg { return &Neg{X: x} }

func (n *Neg) exprType() string { return "neg" }
func (n *Neg) String() string   { return "-" + wrapText(n.X, isSum(n.X)) }

// ============================================================
// Binary nodes
// ============================================================

type Add struct{ L, R Expr }
type Sub struct{ L, R Expr }
type Mul struct{ L, R Expr }
type Div struct{ L, R Expr }

func AddOf(l, r Expr) *Add { return &Add{L: l, R: r} }
func SubOf(l, r Expr) *Sub { return &Sub{L: l, R: r} }
func MulOf(l, r Expr) *Mul { return &Mul{L: l, R: r} }
func DivOf(l, r Expr) *Div { return &Div{L: l, R: r} }

func (a *Add) exprType() string { return "add" }
func (s *Sub) exprType() string { return "sub" }
func (m *Mul) exprType() string { return "mul" }
func (d *Div) exprType() string { return "div" }

func (a *Add) String() string { return a.L.String() + " + " + a.R.String() }
func (s *Sub) String() string { return s.L.String() + " - " + wrapText(s.R, isSum(s.R)) }

func (m *Mul) String() string {
	return wrapText(m.L, isSum(m.L)) + "*" + wrapText(m.R, isSum(m.R))
}

func (d *Div) String() string {
	_, rIsAtom := d.R.(*Var)
	if _, ok := d.R.(*Num); ok {
		rIsAtom = true
	}
	return wrapText(d.L, isSum(d.L)) + "/" + wrapText(d.R, !rIsAtom)
}

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ Base, Exp Expr }

func PowOf(base, exp Expr) *Pow { return &Pow{Base: base, Exp: exp} }

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) String() string {
	return wrapText(p.Base, isCompound(p.Base)) + "^" + wrapText(p.Exp, isCompound(p.Exp))
}

// ============================================================
// Call: named unary function application
// ============================================================

type Call struct {
	Name string
	Arg  Expr
}

func CallOf(name string, arg Expr) *Call { return &Call{Name: name, Arg: arg} }

func (c *Call) exprType() string { return "call" }
func (c *Call) String() string   { return c.Name + "(" + c.Arg.String() + ")" }

// functionNames lists every name the lexer treats as a function when it is
// directly followed by '('. sec and sgn only appear as derivative outputs.
var functionNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "ln": true, "log": true,
	"exp": true, "sqrt": true, "abs": true, "sec": true, "sgn": true,
}

// IsFunctionName reports whether name is a recognised function identifier.
func IsFunctionName(name string) bool { return functionNames[name] }

// ============================================================
// Helpers
// ============================================================

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Num:
		y, ok := b.(*Num)
		return ok && (x.Value == y.Value || (math.IsNaN(x.Value) && math.IsNaN(y.Value)))
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Name == y.Name
	case *Neg:
		y, ok := b.(*Neg)
		return ok && Equal(x.X, y.X)
	case *Add:
		y, ok := b.(*Add)
		return ok && Equal(x.L, y.L) && Equal(x.R, y.R)
	case *Sub:
		y, ok := b.(*Sub)
		return ok && Equal(x.L, y.L) && Equal(x.R, y.R)
	case *Mul:
		y, ok := b.(*Mul)
		return ok && Equal(x.L, y.L) && Equal(x.R, y.R)
	case *Div:
		y, ok := b.(*Div)
		return ok && Equal(x.L, y.L) && Equal(x.R, y.R)
	case *Pow:
		y, ok := b.(*Pow)
		return ok && Equal(x.Base, y.Base) && Equal(x.Exp, y.Exp)
	case *Call:
		y, ok := b.(*Call)
		return ok && x.Name == y.Name && Equal(x.Arg, y.Arg)
	}
	return false
}

// Depth returns the height of the tree; a leaf has depth 1.
func Depth(e Expr) int {
	switch x := e.(type) {
	case *Neg:
		return 1 + Depth(x.X)
	case *Add:
		return 1 + max(Depth(x.L), Depth(x.R))
	case *Sub:
		return 1 + max(Depth(x.L), Depth(x.R))
	case *Mul:
		return 1 + max(Depth(x.L), Depth(x.R))
	case *Div:
		return 1 + max(Depth(x.L), Depth(x.R))
	case *Pow:
		return 1 + max(Depth(x.Base), Depth(x.Exp))
	case *Call:
		return 1 + Depth(x.Arg)
	}
	return 1
}

// FreeVars returns the distinct variable names of e in first-appearance order.
func FreeVars(e Expr) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case *Var:
			if !seen[x.Name] {
				seen[x.Name] = true
				names = append(names, x.Name)
			}
		case *Neg:
			walk(x.X)
		case *Add:
			walk(x.L)
			walk(x.R)
		case *Sub:
			walk(x.L)
			walk(x.R)
		case *Mul:
			walk(x.L)
			walk(x.R)
		case *Div:
			walk(x.L)
			walk(x.R)
		case *Pow:
			walk(x.Base)
			walk(x.Exp)
		case *Call:
			walk(x.Arg)
		}
	}
	walk(e)
	return names
}

func isSum(e Expr) bool {
	switch e.(type) {
	case *Add, *Sub:
		return true
	}
	return false
}

func isCompound(e Expr) bool {
	switch x := e.(type) {
	case *Num:
		return x.Value < 0
	case *Var, *Call:
		return false
	}
	return true
}

func wrapText(e Expr, paren bool) string {
	if paren {
		return "(" + e.String() + ")"
	}
	return e.String()
}
