package symdiff

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{}    `json:"result,omitempty"`
	LaTeX  string         `json:"latex,omitempty"`
	String string         `json:"string,omitempty"`
	Steps  []RenderedStep `json:"steps,omitempty"`
	Error  string         `json:"error,omitempty"`
	Kind   string         `json:"kind,omitempty"`
}

// RenderedStep is a Step with both expressions rendered as TeX.
type RenderedStep struct {
	Rule   string `json:"rule"`
	Before string `json:"before"`
	After  string `json:"after"`
	Note   string `json:"note,omitempty"`
}

// RenderSteps renders every expression of a step trace.
func RenderSteps(steps []Step) []RenderedStep {
	out := make([]RenderedStep, len(steps))
	for i, s := range steps {
		out[i] = RenderedStep{Rule: s.Rule, Before: Render(s.Before), After: Render(s.After), Note: s.Note}
	}
	return out
}

// HandleToolCall dispatches a tool request to the default engine.
func HandleToolCall(req ToolRequest) ToolResponse { return defaultEngine.HandleToolCall(req) }

// HandleToolCall dispatches a tool request. Expression parameters accept either
// source text ("3x^2 + sin(x)") or a JSON tree as produced by ToJSON.
func (en *Engine) HandleToolCall(req ToolRequest) ToolResponse {
	fail := func(err error) ToolResponse {
		return ToolResponse{Error: err.Error(), Kind: ErrorKind(err)}
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getVar := func() (string, error) {
		if _, ok := req.Params["var"]; !ok {
			return DefaultVariable, nil
		}
		return getString("var")
	}
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case string:
			return en.ParseString(val)
		case map[string]interface{}:
			e, err := FromJSON(val)
			if err != nil {
				return nil, err
			}
			if nesting(e, 1) > en.maxDepth {
				return nil, ErrTooDeep
			}
			return e, nil
		}
		return nil, fmt.Errorf("param %s must be a string or an expression object", key)
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: Tree(e), LaTeX: Render(e), String: e.String()}
	}

	switch req.Tool {
	case "tokenize":
		src, err := getString("expr")
		if err != nil {
			return fail(err)
		}
		tokens, err := Tokenize(src)
		if err != nil {
			return fail(err)
		}
		strs := make([]string, len(tokens))
		for i, t := range tokens {
			strs[i] = t.String()
		}
		return ToolResponse{Result: strs, String: strings.Join(strs, ", ")}

	case "parse":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(e)

	case "differentiate":
		src, err := getString("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		d, err := en.Differentiate(src, v)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"input":      Tree(d.Input),
				"derivative": Tree(d.Derivative),
				"simplified": Tree(d.Simplified),
			},
			LaTeX:  d.LaTeX,
			String: d.Simplified.String(),
			Steps:  RenderSteps(d.Steps),
		}

	case "derive":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		raw, steps, err := en.Derive(e, v)
		if err != nil {
			return fail(err)
		}
		resp := respond(raw)
		resp.Steps = RenderSteps(steps)
		return resp

	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(Simplify(e))

	case "to_latex":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{LaTeX: Render(e), String: e.String()}

	case "free_vars":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		names := FreeVars(e)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool), Kind: KindUnknown}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	expr := "string|object"
	tools := []map[string]interface{}{
		ts("tokenize", "Split source text into tokens, including implicit '*'", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("parse", "Parse source text into an expression tree", []string{"expr"}, map[string]string{"expr": expr}),
		ts("differentiate", "Full pipeline: derivative, step trace, simplified form and TeX. var defaults to x", []string{"expr"}, map[string]string{"expr": "string", "var": "string"}),
		ts("derive", "Raw (unsimplified) derivative with its step trace", []string{"expr"}, map[string]string{"expr": expr, "var": "string"}),
		ts("simplify", "Simplify an expression", []string{"expr"}, map[string]string{"expr": expr}),
		ts("to_latex", "Render an expression as TeX", []string{"expr"}, map[string]string{"expr": expr}),
		ts("free_vars", "Return the variable names of an expression", []string{"expr"}, map[string]string{"expr": expr}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		if strings.Contains(typ, "|") {
			properties[k] = map[string]interface{}{"type": strings.Split(typ, "|")}
			continue
		}
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
