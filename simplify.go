package symdiff

// ============================================================
// Simplifier: best-effort bottom-up reducer
// ============================================================

// Simplify reduces e bottom-up: constant folding, additive and multiplicative
// identities, power identities, like-factor and like-term combination and
// same-base quotients. It never fails. It is not a canonical-form normalizer.
func Simplify(e Expr) Expr {
	switch x := e.(type) {
	case *Neg:
		return simplifyNeg(Simplify(x.X))
	case *Add, *Sub:
		return combineTerms(appendChainTerms(nil, e, 1))
	case *Mul:
		return simplifyFactors(appendChainFactors(nil, e))
	case *Div:
		return simplifyQuotient(Simplify(x.L), Simplify(x.R))
	case *Pow:
		return simplifyPower(Simplify(x.Base), Simplify(x.Exp))
	case *Call:
		return CallOf(x.Name, Simplify(x.Arg))
	}
	return e
}

func simplifyNeg(x Expr) Expr {
	switch v := x.(type) {
	case *Num:
		return N(-v.Value)
	case *Neg:
		return v.X
	}
	return NegOf(x)
}

// ============================================================
// Sums
// ============================================================

// term is c·rest; a nil rest marks a constant.
type term struct {
	coeff float64
	rest  Expr
}

// appendChainTerms walks a whole chain of sums, differences and negations,
// simplifying only the operands that are not part of the chain. The caller
// combines the chain once, at its root.
func appendChainTerms(terms []term, e Expr, sign float64) []term {
	switch x := e.(type) {
	case *Add:
		terms = appendChainTerms(terms, x.L, sign)
		return appendChainTerms(terms, x.R, sign)
	case *Sub:
		terms = appendChainTerms(terms, x.L, sign)
		return appendChainTerms(terms, x.R, -sign)
	case *Neg:
		return appendChainTerms(terms, x.X, -sign)
	}
	return appendTerms(terms, Simplify(e), sign)
}

// appendTerms flattens already simplified sums, differences and negations
// into signed terms.
func appendTerms(terms []term, e Expr, sign float64) []term {
	switch x := e.(type) {
	case *Add:
		terms = appendTerms(terms, x.L, sign)
		return appendTerms(terms, x.R, sign)
	case *Sub:
		terms = appendTerms(terms, x.L, sign)
		return appendTerms(terms, x.R, -sign)
	case *Neg:
		return appendTerms(terms, x.X, -sign)
	case *Num:
		return append(terms, term{coeff: sign * x.Value})
	}
	c, rest := splitCoefficient(e)
	return append(terms, term{coeff: sign * c, rest: rest})
}

// splitCoefficient separates the numeric factors of a product from the rest.
func splitCoefficient(e Expr) (float64, Expr) {
	if _, ok := e.(*Mul); !ok {
		return 1, e
	}
	coeff := 1.0
	var others []Expr
	collectFactors(e, &coeff, &others)
	if len(others) == 0 {
		return coeff, nil
	}
	return coeff, buildProduct(others)
}

// combineTerms sums the coefficients of structurally identical terms, keeping
// first-appearance order, and places the constant last.
func combineTerms(terms []term) Expr {
	var order []string
	coeffs := map[string]float64{}
	rests := map[string]Expr{}
	constant := 0.0
	for _, t := range terms {
		if t.rest == nil {
			constant += t.coeff
			continue
		}
		key := t.rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			rests[key] = t.rest
		}
		coeffs[key] += t.coeff
	}

	var pieces []term
	for _, key := range order {
		if c := coeffs[key]; c != 0 {
			pieces = append(pieces, term{coeff: c, rest: rests[key]})
		}
	}
	if constant != 0 {
		pieces = append(pieces, term{coeff: constant})
	}
	if len(pieces) == 0 {
		return N(0)
	}

	var acc Expr
	for i, p := range pieces {
		negative := p.coeff < 0
		mag := p.coeff
		if negative {
			mag = -mag
		}
		t := scaledTerm(mag, p.rest)
		switch {
		case i == 0 && negative:
			acc = simplifyNeg(t)
		case i == 0:
			acc = t
		case negative:
			acc = SubOf(acc, t)
		default:
			acc = AddOf(acc, t)
		}
	}
	return acc
}

func scaledTerm(c float64, rest Expr) Expr {
	if rest == nil {
		return N(c)
	}
	if c == 1 {
		return rest
	}
	return simplifyProduct(N(c), rest)
}

// ============================================================
// Products
// ============================================================

// appendChainFactors collects the simplified operands of a chain of products.
func appendChainFactors(factors []Expr, e Expr) []Expr {
	if x, ok := e.(*Mul); ok {
		factors = appendChainFactors(factors, x.L)
		return appendChainFactors(factors, x.R)
	}
	return append(factors, Simplify(e))
}

func simplifyFactors(fs []Expr) Expr {
	if len(fs) == 2 {
		return simplifyProduct(fs[0], fs[1])
	}
	for _, f := range fs {
		if isNum(f, 0) {
			return N(0)
		}
	}
	return combineFactors(fs)
}

func simplifyProduct(l, r Expr) Expr {
	ln, lok := l.(*Num)
	rn, rok := r.(*Num)
	if lok && rok {
		return N(ln.Value * rn.Value)
	}
	if isNum(l, 0) || isNum(r, 0) {
		return N(0)
	}
	if isNum(l, 1) {
		return r
	}
	if isNum(r, 1) {
		return l
	}
	return combineFactors([]Expr{l, r})
}

// combineFactors folds the numeric factors of fs into one coefficient and
// merges powers of the same variable.
func combineFactors(fs []Expr) Expr {
	coeff := 1.0
	var factors []Expr
	for _, f := range fs {
		collectFactors(f, &coeff, &factors)
	}
	if coeff == 0 {
		return N(0)
	}

	// Combine Var and Var^Num factors of the same name.
	var names []string
	exps := map[string]float64{}
	var others []Expr
	for _, f := range factors {
		name, exp, ok := monomialFactor(f)
		if !ok {
			others = append(others, f)
			continue
		}
		if _, seen := exps[name]; !seen {
			names = append(names, name)
		}
		exps[name] += exp
	}

	var rebuilt []Expr
	for _, name := range names {
		switch exp := exps[name]; exp {
		case 0:
		case 1:
			rebuilt = append(rebuilt, V(name))
		default:
			rebuilt = append(rebuilt, PowOf(V(name), N(exp)))
		}
	}
	rebuilt = append(rebuilt, others...)

	if len(rebuilt) == 0 {
		return N(coeff)
	}
	switch coeff {
	case 1:
		return buildProduct(rebuilt)
	case -1:
		return NegOf(buildProduct(rebuilt))
	}
	return buildProduct(append([]Expr{N(coeff)}, rebuilt...))
}

// collectFactors flattens nested products, folding numbers and the sign of
// negations into coeff.
func collectFactors(e Expr, coeff *float64, factors *[]Expr) {
	switch x := e.(type) {
	case *Mul:
		collectFactors(x.L, coeff, factors)
		collectFactors(x.R, coeff, factors)
	case *Neg:
		*coeff = -*coeff
		collectFactors(x.X, coeff, factors)
	case *Num:
		*coeff *= x.Value
	default:
		*factors = append(*factors, e)
	}
}

// monomialFactor recognises x and x^n.
func monomialFactor(e Expr) (string, float64, bool) {
	switch x := e.(type) {
	case *Var:
		return x.Name, 1, true
	case *Pow:
		v, vok := x.Base.(*Var)
		n, nok := x.Exp.(*Num)
		if vok && nok {
			return v.Name, n.Value, true
		}
	}
	return "", 0, false
}

// buildProduct nests factors to the left: a·b·c is (a·b)·c.
func buildProduct(factors []Expr) Expr {
	acc := factors[0]
	for _, f := range factors[1:] {
		acc = MulOf(acc, f)
	}
	return acc
}

// ============================================================
// Quotients and powers
// ============================================================

func simplifyQuotient(l, r Expr) Expr {
	ln, lok := l.(*Num)
	rn, rok := r.(*Num)
	if lok && rok {
		return N(ln.Value / rn.Value)
	}
	if isNum(r, 1) {
		return l
	}
	if isNum(l, 0) {
		return N(0)
	}
	lName, lExp, lok := monomialFactor(l)
	rName, rExp, rok := monomialFactor(r)
	if lok && rok && lName == rName {
		return simplifyPower(V(lName), N(lExp-rExp))
	}
	return DivOf(l, r)
}

func simplifyPower(base, exp Expr) Expr {
	if isNum(exp, 0) {
		return N(1)
	}
	if isNum(exp, 1) {
		return base
	}
	return PowOf(base, exp)
}

func isNum(e Expr, v float64) bool {
	n, ok := e.(*Num)
	return ok && n.Value == v
}
