package symdiff

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes e as a JSON tree, e.g. {"type":"pow","base":{...},"exp":{...}}.
// Non-finite numbers are written as the strings "NaN", "+Inf" and "-Inf".
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(Tree(e))
	return string(b), err
}

// Tree returns the generic map form of e that ToJSON marshals.
func Tree(e Expr) map[string]interface{} {
	switch x := e.(type) {
	case *Num:
		if math.IsNaN(x.Value) || math.IsInf(x.Value, 0) {
			return map[string]interface{}{"type": "num", "value": strconv.FormatFloat(x.Value, 'g', -1, 64)}
		}
		return map[string]interface{}{"type": "num", "value": x.Value}
	case *Var:
		return map[string]interface{}{"type": "var", "name": x.Name}
	case *Neg:
		return map[string]interface{}{"type": "neg", "x": Tree(x.X)}
	case *Add:
		return binaryTree("add", x.L, x.R)
	case *Sub:
		return binaryTree("sub", x.L, x.R)
	case *Mul:
		return binaryTree("mul", x.L, x.R)
	case *Div:
		return binaryTree("div", x.L, x.R)
	case *Pow:
		return map[string]interface{}{"type": "pow", "base": Tree(x.Base), "exp": Tree(x.Exp)}
	case *Call:
		return map[string]interface{}{"type": "call", "name": x.Name, "arg": Tree(x.Arg)}
	}
	return nil
}

func binaryTree(typ string, l, r Expr) map[string]interface{} {
	return map[string]interface{}{"type": typ, "left": Tree(l), "right": Tree(r)}
}

// FromJSON decodes the generic map form produced by Tree (or by
// encoding/json from ToJSON output) back into an expression.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	pair := func() (Expr, Expr, error) {
		l, err := sub("left")
		if err != nil {
			return nil, nil, err
		}
		r, err := sub("right")
		if err != nil {
			return nil, nil, err
		}
		return l, r, nil
	}

	switch typ {
	case "num":
		switch v := data["value"].(type) {
		case float64:
			return N(v), nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid num value: %s", v)
			}
			return N(f), nil
		case nil:
			return nil, fmt.Errorf("num: missing 'value'")
		}
		return nil, fmt.Errorf("num: 'value' must be a number")

	case "var":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return V(name), nil

	case "neg":
		x, err := sub("x")
		if err != nil {
			return nil, err
		}
		return NegOf(x), nil

	case "add", "sub", "mul", "div":
		l, r, err := pair()
		if err != nil {
			return nil, err
		}
		switch typ {
		case "add":
			return AddOf(l, r), nil
		case "sub":
			return SubOf(l, r), nil
		case "mul":
			return MulOf(l, r), nil
		}
		return DivOf(l, r), nil

	case "pow":
		base, err := sub("base")
		if err != nil {
			return nil, err
		}
		exp, err := sub("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "call":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := sub("arg")
		if err != nil {
			return nil, err
		}
		return CallOf(name, arg), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// ParseJSON decodes ToJSON output.
func ParseJSON(s string) (Expr, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}
	return FromJSON(data)
}
