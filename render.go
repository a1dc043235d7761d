package symdiff

import (
	"math"

	"github.com/shopspring/decimal"
)

// Render returns the TeX form of e. It is total over any tree, including calls
// to functions Derive would reject.
func Render(e Expr) string {
	switch x := e.(type) {
	case *Num:
		return renderNumber(x.Value)
	case *Var:
		return x.Name
	case *Neg:
		return "-" + renderWrapped(x.X, isSum(x.X))
	case *Add:
		return Render(x.L) + " + " + Render(x.R)
	case *Sub:
		return Render(x.L) + " - " + renderWrapped(x.R, isSum(x.R))
	case *Mul:
		return renderWrapped(x.L, isSum(x.L)) + " " + renderWrapped(x.R, isSum(x.R) || isSigned(x.R))
	case *Div:
		return "\\frac{" + Render(x.L) + "}{" + Render(x.R) + "}"
	case *Pow:
		return renderWrapped(x.Base, needsBaseParens(x.Base)) + "^{" + Render(x.Exp) + "}"
	case *Call:
		return "\\" + x.Name + "(" + Render(x.Arg) + ")"
	}
	return ""
}

// renderNumber prints the shortest decimal that round-trips to v.
func renderNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "\\mathrm{NaN}"
	case math.IsInf(v, 1):
		return "\\infty"
	case math.IsInf(v, -1):
		return "-\\infty"
	}
	return decimal.NewFromFloat(v).String()
}

func needsBaseParens(e Expr) bool {
	switch x := e.(type) {
	case *Add, *Sub, *Mul, *Div, *Neg, *Pow:
		return true
	case *Num:
		return x.Value < 0
	}
	return false
}

// isSigned reports whether e renders with a leading minus sign.
func isSigned(e Expr) bool {
	switch x := e.(type) {
	case *Neg:
		return true
	case *Num:
		return x.Value < 0
	}
	return false
}

func renderWrapped(e Expr, paren bool) string {
	if paren {
		return "(" + Render(e) + ")"
	}
	return Render(e)
}
