package symdiff

import (
	"errors"
	"fmt"
)

// ErrTooDeep is returned when an expression nests deeper than the engine's
// configured maximum depth.
var ErrTooDeep = errors.New("symdiff: expression nested too deeply")

// LexError reports a character the lexer does not recognise.
type LexError struct {
	Char rune
	Pos  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("symdiff: invalid character %q at position %d", e.Char, e.Pos)
}

// ParseError reports a token mismatch. Found is "EOF" when input ran out.
type ParseError struct {
	Expected string
	Found    string
	Pos      int
}

func (e *ParseError) Error() string {
	if e.Found == "EOF" {
		return fmt.Sprintf("symdiff: expected %s but reached end of input", e.Expected)
	}
	return fmt.Sprintf("symdiff: expected %s but found %q at position %d", e.Expected, e.Found, e.Pos)
}

// UnsupportedFunctionError is returned by Derive for a Call whose function has
// no derivative rule.
type UnsupportedFunctionError struct {
	Name string
}

func (e *UnsupportedFunctionError) Error() string {
	return fmt.Sprintf("symdiff: unsupported function %q", e.Name)
}

// Error kinds as reported by ErrorKind.
const (
	KindLex                 = "lex"
	KindParse               = "parse"
	KindUnsupportedFunction = "unsupported_function"
	KindTooDeep             = "too_deep"
	KindUnknown             = "unknown"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	var lexErr *LexError
	var parseErr *ParseError
	var fnErr *UnsupportedFunctionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &lexErr):
		return KindLex
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &fnErr):
		return KindUnsupportedFunction
	case errors.Is(err, ErrTooDeep):
		return KindTooDeep
	}
	return KindUnknown
}
