package symdiff

import "fmt"

// Step records one rule application. Before is the node the rule was applied
// to and After the expression it produced.
type Step struct {
	Rule   string
	Before Expr
	After  Expr
	Note   string
}

// Rule labels used in step traces.
const (
	RuleConstant         = "Constant"
	RuleVariable         = "Variable"
	RuleNegative         = "Negative"
	RuleSum              = "Sum"
	RuleDifference       = "Difference"
	RuleProductPrep      = "Product (preparation)"
	RuleProduct          = "Product"
	RuleQuotientPrep     = "Quotient (preparation)"
	RuleQuotient         = "Quotient"
	RulePower            = "Power"
	RuleGeneralPowerPrep = "General power (preparation)"
	RuleGeneralPower     = "General power"
	RuleChain            = "Chain rule"
	RuleSimplification   = "Simplification"
)

// differentiable maps each function with a derivative rule to the note shown
// in its chain-rule step.
var differentiable = map[string]string{
	"sin":  "d/du sin(u) = cos(u)",
	"cos":  "d/du cos(u) = -sin(u)",
	"tan":  "d/du tan(u) = sec(u)^2",
	"ln":   "d/du ln(u) = 1/u",
	"log":  "d/du log(u) = 1/u",
	"exp":  "d/du exp(u) = exp(u)",
	"sqrt": "d/du sqrt(u) = 1/(2 sqrt(u))",
	"abs":  "d/du abs(u) = sgn(u)",
}

// IsDifferentiable reports whether Derive has a rule for the function name.
func IsDifferentiable(name string) bool {
	_, ok := differentiable[name]
	return ok
}

type deriver struct {
	variable  string
	maxDepth  int
	unitChain bool
	steps     []Step
}

// Derive differentiates e with respect to variable and returns the raw
// (unsimplified) derivative together with the steps that produced it.
func (en *Engine) Derive(expr Expr, variable string) (Expr, []Step, error) {
	d := &deriver{variable: variable, maxDepth: en.maxDepth, unitChain: en.unitChain}
	out, err := d.derive(expr, 1)
	if err != nil {
		return nil, nil, err
	}
	return out, d.steps, nil
}

func (d *deriver) push(rule string, before, after Expr, note string) {
	d.steps = append(d.steps, Step{Rule: rule, Before: before, After: after, Note: note})
}

// derive measures depth the way the parser does: each negation, each
// function argument and each operand that could only have been written inside
// parentheses opens a level. Operator chains such as a+b+c or a*b*c stay flat,
// so every tree Parse accepts can be differentiated.
func (d *deriver) derive(n Expr, depth int) (Expr, error) {
	if _, ok := n.(*Neg); ok {
		depth++
	}
	if d.maxDepth > 0 && depth > d.maxDepth {
		return nil, ErrTooDeep
	}
	switch x := n.(type) {
	case *Num:
		res := N(0)
		d.push(RuleConstant, x, res, "the derivative of a constant is 0")
		return res, nil

	case *Var:
		res := N(0)
		note := fmt.Sprintf("d(%s)/d%s = 0", x.Name, d.variable)
		if x.Name == d.variable {
			res = N(1)
			note = fmt.Sprintf("d(%s)/d%s = 1", x.Name, d.variable)
		}
		d.push(RuleVariable, x, res, note)
		return res, nil

	case *Neg:
		inner, err := d.derive(x.X, depth+grouped(x, x.X, false))
		if err != nil {
			return nil, err
		}
		res := NegOf(inner)
		d.push(RuleNegative, x, res, "(-f)' = -f'")
		return res, nil

	case *Add:
		l, r, err := d.deriveBoth(x, x.L, x.R, depth)
		if err != nil {
			return nil, err
		}
		res := AddOf(l, r)
		d.push(RuleSum, x, res, "(f + g)' = f' + g'")
		return res, nil

	case *Sub:
		l, r, err := d.deriveBoth(x, x.L, x.R, depth)
		if err != nil {
			return nil, err
		}
		res := SubOf(l, r)
		d.push(RuleDifference, x, res, "(f - g)' = f' - g'")
		return res, nil

	case *Mul:
		d.push(RuleProductPrep, x, x, "apply (f·g)' = f'·g + f·g'")
		fp, gp, err := d.deriveBoth(x, x.L, x.R, depth)
		if err != nil {
			return nil, err
		}
		res := AddOf(MulOf(fp, x.R), MulOf(x.L, gp))
		d.push(RuleProduct, x, res, "product rule applied")
		return res, nil

	case *Div:
		d.push(RuleQuotientPrep, x, x, "apply (f/g)' = (f'·g - f·g')/g^2")
		fp, gp, err := d.deriveBoth(x, x.L, x.R, depth)
		if err != nil {
			return nil, err
		}
		num := SubOf(MulOf(fp, x.R), MulOf(x.L, gp))
		res := DivOf(num, PowOf(x.R, N(2)))
		d.push(RuleQuotient, x, res, "quotient rule applied")
		return res, nil

	case *Pow:
		return d.derivePow(x, depth)

	case *Call:
		return d.deriveCall(x, depth)
	}
	return nil, fmt.Errorf("symdiff: unknown expression node %T", n)
}

func (d *deriver) deriveBoth(parent, l, r Expr, depth int) (Expr, Expr, error) {
	lp, err := d.derive(l, depth+grouped(parent, l, false))
	if err != nil {
		return nil, nil, err
	}
	rp, err := d.derive(r, depth+grouped(parent, r, true))
	if err != nil {
		return nil, nil, err
	}
	return lp, rp, nil
}

// grouped returns 1 when child, as an operand of parent, must be parenthesised
// in source text (or is a function argument), and 0 otherwise. right selects
// the right operand of a binary node.
func grouped(parent, child Expr, right bool) int {
	if _, ok := parent.(*Call); ok {
		return 1
	}
	var sum, product, power bool
	switch child.(type) {
	case *Add, *Sub:
		sum = true
	case *Mul, *Div:
		product = true
	case *Pow:
		power = true
	default:
		return 0
	}
	var need bool
	switch parent.(type) {
	case *Neg:
		need = true
	case *Add, *Sub:
		need = right && sum
	case *Mul, *Div:
		need = sum || (right && product)
	case *Pow:
		need = sum || product || (right && power)
	}
	if need {
		return 1
	}
	return 0
}

// nesting is the depth Parse would have needed to read e, as measured by derive.
func nesting(e Expr, depth int) int {
	if _, ok := e.(*Neg); ok {
		depth++
	}
	deepest := depth
	visit := func(child Expr, right bool) {
		deepest = max(deepest, nesting(child, depth+grouped(e, child, right)))
	}
	switch x := e.(type) {
	case *Neg:
		visit(x.X, false)
	case *Add:
		visit(x.L, false)
		visit(x.R, true)
	case *Sub:
		visit(x.L, false)
		visit(x.R, true)
	case *Mul:
		visit(x.L, false)
		visit(x.R, true)
	case *Div:
		visit(x.L, false)
		visit(x.R, true)
	case *Pow:
		visit(x.Base, false)
		visit(x.Exp, true)
	case *Call:
		visit(x.Arg, false)
	}
	return deepest
}

// constExponent reports the value of a numeric exponent, accepting a negated
// literal such as the -2 of x^-2.
func constExponent(e Expr) (float64, bool) {
	switch x := e.(type) {
	case *Num:
		return x.Value, true
	case *Neg:
		if n, ok := x.X.(*Num); ok {
			return -n.Value, true
		}
	}
	return 0, false
}

func (d *deriver) derivePow(x *Pow, depth int) (Expr, error) {
	if n, ok := constExponent(x.Exp); ok {
		head := MulOf(N(n), PowOf(x.Base, N(n-1)))
		if v, isVar := x.Base.(*Var); isVar && v.Name == d.variable && !d.unitChain {
			d.push(RulePower, x, head, "d(x^n) = n·x^(n-1)")
			return head, nil
		}
		up, err := d.derive(x.Base, depth+grouped(x, x.Base, false))
		if err != nil {
			return nil, err
		}
		res := MulOf(head, up)
		d.push(RulePower, x, res, "d(u^n) = n·u^(n-1)·u'")
		return res, nil
	}

	logForm := MulOf(x.Exp, CallOf("ln", x.Base))
	d.push(RuleGeneralPowerPrep, x, logForm, "u^v = exp(v·ln(u)), so (u^v)' = u^v·(v·ln(u))'")
	// One level up, so the synthetic ln(u) leaves u no deeper than it was.
	inner, err := d.derive(logForm, depth-1)
	if err != nil {
		return nil, err
	}
	res := MulOf(x, inner)
	d.push(RuleGeneralPower, x, res, "logarithmic differentiation applied")
	return res, nil
}

func (d *deriver) deriveCall(x *Call, depth int) (Expr, error) {
	note, ok := differentiable[x.Name]
	if !ok {
		return nil, &UnsupportedFunctionError{Name: x.Name}
	}
	u := x.Arg
	up, err := d.derive(u, depth+grouped(x, u, false))
	if err != nil {
		return nil, err
	}
	var res Expr
	switch x.Name {
	case "sin":
		res = MulOf(CallOf("cos", u), up)
	case "cos":
		res = MulOf(NegOf(CallOf("sin", u)), up)
	case "tan":
		res = MulOf(PowOf(CallOf("sec", u), N(2)), up)
	case "ln", "log":
		res = DivOf(up, u)
	case "exp":
		res = MulOf(CallOf("exp", u), up)
	case "sqrt":
		res = DivOf(up, MulOf(N(2), CallOf("sqrt", u)))
	case "abs":
		res = MulOf(CallOf("sgn", u), up)
	}
	d.push(RuleChain, x, res, note)
	return res, nil
}
