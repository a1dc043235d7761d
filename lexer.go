package symdiff

import (
	"fmt"
	"strconv"
)

// TokenKind represents the type of a token
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenName
	TokenOperator
)

func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenName:
		return "name"
	case TokenOperator:
		return "operator"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a single lexical unit. Value is set for numbers, Text for names
// and operators. Synthetic marks a '*' inserted for implicit multiplication.
type Token struct {
	Kind      TokenKind
	Value     float64
	Text      string
	Pos       int
	Synthetic bool
}

func (t Token) String() string {
	switch t.Kind {
	case TokenNumber:
		return "Number(" + strconv.FormatFloat(t.Value, 'g', -1, 64) + ")"
	case TokenName:
		return "Name(" + t.Text + ")"
	}
	return "Operator(" + t.Text + ")"
}

func (t Token) isOp(op string) bool { return t.Kind == TokenOperator && t.Text == op }

// NumberToken, NameToken and OperatorToken build tokens at position 0; they
// are mostly useful for tests and hand-built token streams.
func NumberToken(v float64) Token   { return Token{Kind: TokenNumber, Value: v} }
func NameToken(name string) Token   { return Token{Kind: TokenName, Text: name} }
func OperatorToken(op string) Token { return Token{Kind: TokenOperator, Text: op} }

// Tokenize converts source into tokens, including the synthetic '*' tokens
// of implicit multiplication.
func Tokenize(source string) ([]Token, error) {
	raw, err := scanTokens(source)
	if err != nil {
		return nil, err
	}
	return InsertImplicitMul(raw), nil
}

// scanTokens is the character-level pass. It never inserts operators.
func scanTokens(source string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(source) {
		c := source[i]
		switch {
		case isSpace(c):
			i++
		case isDigit(c) || (c == '.' && i+1 < len(source) && isDigit(source[i+1])):
			start := i
			for i < len(source) && isDigit(source[i]) {
				i++
			}
			if i+1 < len(source) && source[i] == '.' && isDigit(source[i+1]) {
				i++
				for i < len(source) && isDigit(source[i]) {
					i++
				}
			}
			if i < len(source) && source[i] == '.' {
				return nil, &LexError{Char: '.', Pos: i}
			}
			v, err := strconv.ParseFloat(source[start:i], 64)
			if err != nil {
				return nil, &LexError{Char: rune(c), Pos: start}
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Value: v, Pos: start})
		case isLetter(c):
			start := i
			for i < len(source) && isLetter(source[i]) {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenName, Text: source[start:i], Pos: start})
		case isOperator(c):
			tokens = append(tokens, Token{Kind: TokenOperator, Text: string(c), Pos: i})
			i++
		default:
			r := rune(c)
			if c >= 0x80 {
				r = []rune(source[i:])[0]
			}
			return nil, &LexError{Char: r, Pos: i}
		}
	}
	return tokens, nil
}

// InsertImplicitMul inserts a synthetic '*' between every token that can end a
// primary (number, name, ')') and a following token that can start one
// (number, name, '('). A function name directly followed by '(' is a call and
// is left alone.
func InsertImplicitMul(raw []Token) []Token {
	if len(raw) == 0 {
		return raw
	}
	out := make([]Token, 0, len(raw)*2)
	for i, t := range raw {
		out = append(out, t)
		if i+1 == len(raw) {
			break
		}
		next := raw[i+1]
		if !endsPrimary(t) || !startsPrimary(next) {
			continue
		}
		if t.Kind == TokenName && next.isOp("(") && IsFunctionName(t.Text) {
			continue
		}
		out = append(out, Token{Kind: TokenOperator, Text: "*", Pos: next.Pos, Synthetic: true})
	}
	return out
}

func endsPrimary(t Token) bool {
	return t.Kind == TokenNumber || t.Kind == TokenName || t.isOp(")")
}

func startsPrimary(t Token) bool {
	return t.Kind == TokenNumber || t.Kind == TokenName || t.isOp("(")
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '^', '(', ')':
		return true
	}
	return false
}
