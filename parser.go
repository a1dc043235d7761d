package symdiff

// parser is a recursive-descent parser with one method per precedence level.
type parser struct {
	tokens   []Token
	current  int
	depth    int
	maxDepth int
}

func newParser(tokens []Token, maxDepth int) *parser {
	return &parser{tokens: tokens, maxDepth: maxDepth}
}

// peek returns the current token, or false at end of input.
func (p *parser) peek() (Token, bool) {
	if p.current >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.current], true
}

func (p *parser) atOp(op string) bool {
	t, ok := p.peek()
	return ok && t.isOp(op)
}

// expect consumes the operator op or fails with a ParseError.
func (p *parser) expect(op string) error {
	t, ok := p.peek()
	if !ok {
		return &ParseError{Expected: quoteOp(op), Found: "EOF", Pos: p.endPos()}
	}
	if !t.isOp(op) {
		return &ParseError{Expected: quoteOp(op), Found: tokenText(t), Pos: t.Pos}
	}
	p.current++
	return nil
}

func (p *parser) enter() error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return ErrTooDeep
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) endPos() int {
	if len(p.tokens) == 0 {
		return 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Pos + len(tokenText(last))
}

// parse parses a complete expression and rejects trailing tokens.
func (p *parser) parse() (Expr, error) {
	e, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok {
		return nil, &ParseError{Expected: "end of input", Found: tokenText(t), Pos: t.Pos}
	}
	return e, nil
}

// parseAddSub handles '+' and '-' (lowest precedence, left-associative).
func (p *parser) parseAddSub() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.atOp("+") || p.atOp("-") {
		t, _ := p.peek()
		p.current++
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		if t.Text == "+" {
			left = AddOf(left, right)
		} else {
			left = SubOf(left, right)
		}
	}
	return left, nil
}

// parseMulDiv handles '*' and '/', including synthetic '*' tokens.
func (p *parser) parseMulDiv() (Expr, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for p.atOp("*") || p.atOp("/") {
		t, _ := p.peek()
		p.current++
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		if t.Text == "*" {
			left = MulOf(left, right)
		} else {
			left = DivOf(left, right)
		}
	}
	return left, nil
}

// parsePower chains '^' left to right: a^b^c is (a^b)^c.
func (p *parser) parsePower() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atOp("^") {
		p.current++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = PowOf(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if !p.atOp("-") {
		return p.parsePrimary()
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.current++
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return NegOf(x), nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, &ParseError{Expected: "expression", Found: "EOF", Pos: p.endPos()}
	}
	switch {
	case t.Kind == TokenNumber:
		p.current++
		return N(t.Value), nil

	case t.Kind == TokenName:
		p.current++
		if !p.atOp("(") {
			return V(t.Text), nil
		}
		arg, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		return CallOf(t.Text, arg), nil

	case t.isOp("("):
		return p.parseGroup()
	}
	return nil, &ParseError{Expected: "expression", Found: tokenText(t), Pos: t.Pos}
}

// parseGroup parses '(' AddSub ')'.
func (p *parser) parseGroup() (Expr, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	inner, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return inner, nil
}

func tokenText(t Token) string {
	if t.Kind == TokenNumber {
		return N(t.Value).String()
	}
	return t.Text
}

func quoteOp(op string) string { return "'" + op + "'" }
