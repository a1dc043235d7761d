package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	symdiff "github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/observability"
)

// Error kinds for failures outside the engine.
const (
	KindBadRequest = "bad_request"
	KindTooLarge   = "too_large"
	KindInternal   = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type deriveRequest struct {
	Expr string `json:"expr"`
	Var  string `json:"var"`
}

type deriveResponse struct {
	Input      string                 `json:"input"`
	Derivative string                 `json:"derivative"`
	Simplified string                 `json:"simplified"`
	Steps      []symdiff.RenderedStep `json:"steps"`
}

type simplifyRequest struct {
	Expr string `json:"expr"`
}

type simplifyResponse struct {
	Input      string `json:"input"`
	Simplified string `json:"simplified"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(symdiff.MCPToolSpec()))
}

func (s *Server) handleTool(c *gin.Context) {
	var req symdiff.ToolRequest
	if !s.decode(c, &req) {
		return
	}
	ctx, span := s.obs.Tracer().StartTool(c.Request.Context(), req.Tool)
	defer span.End()

	resp := s.engine.HandleToolCall(req)
	if resp.Error != "" {
		s.obs.Tracer().RecordError(span, errors.New(resp.Error), resp.Kind)
		s.obs.Metrics().RecordError(ctx, observability.OpTool, resp.Kind)
	} else if len(resp.Steps) > 0 {
		s.obs.Tracer().SetStepCount(span, len(resp.Steps))
		s.obs.Metrics().RecordSteps(ctx, len(resp.Steps))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDerive(c *gin.Context) {
	var req deriveRequest
	if !s.decode(c, &req) {
		return
	}
	if req.Expr == "" {
		s.badRequest(c, "missing field: expr")
		return
	}
	variable := req.Var
	if variable == "" {
		variable = symdiff.DefaultVariable
	}

	ctx, span := s.obs.Tracer().StartDerive(c.Request.Context(), req.Expr, variable)
	defer span.End()

	input, err := s.parse(ctx, req.Expr)
	if err != nil {
		s.fail(ctx, c, span, observability.OpDerive, err)
		return
	}

	timing := observability.StartServerTiming(ctx, observability.TimingDerive)
	raw, steps, err := s.engine.Derive(input, variable)
	timing.Stop()
	if err != nil {
		s.fail(ctx, c, span, observability.OpDerive, err)
		return
	}

	timing = observability.StartServerTiming(ctx, observability.TimingSimplify)
	simplified := symdiff.Simplify(raw)
	steps = append(steps, symdiff.SimplificationStep(raw, simplified))
	timing.Stop()

	timing = observability.StartServerTiming(ctx, observability.TimingRender)
	resp := deriveResponse{
		Input:      symdiff.Render(input),
		Derivative: symdiff.Render(raw),
		Simplified: symdiff.Render(simplified),
		Steps:      symdiff.RenderSteps(steps),
	}
	timing.Stop()

	s.obs.Tracer().SetStepCount(span, len(steps))
	s.obs.Metrics().RecordSteps(ctx, len(steps))
	s.writeCached(c, resp)
}

func (s *Server) handleSimplify(c *gin.Context) {
	var req simplifyRequest
	if !s.decode(c, &req) {
		return
	}
	if req.Expr == "" {
		s.badRequest(c, "missing field: expr")
		return
	}

	ctx, span := s.obs.Tracer().StartSimplify(c.Request.Context(), req.Expr)
	defer span.End()

	input, err := s.parse(ctx, req.Expr)
	if err != nil {
		s.fail(ctx, c, span, observability.OpSimplify, err)
		return
	}

	timing := observability.StartServerTiming(ctx, observability.TimingSimplify)
	simplified := symdiff.Simplify(input)
	timing.Stop()

	timing = observability.StartServerTiming(ctx, observability.TimingRender)
	resp := simplifyResponse{
		Input:      symdiff.Render(input),
		Simplified: symdiff.Render(simplified),
	}
	timing.Stop()

	s.writeCached(c, resp)
}

// parse runs the lex and parse phases under their own timings.
func (s *Server) parse(ctx context.Context, source string) (symdiff.Expr, error) {
	timing := observability.StartServerTiming(ctx, observability.TimingLex)
	tokens, err := symdiff.Tokenize(source)
	timing.Stop()
	if err != nil {
		return nil, err
	}

	timing = observability.StartServerTiming(ctx, observability.TimingParse)
	defer timing.Stop()
	return s.engine.Parse(tokens)
}

// decode strictly reads a single JSON value from the request body.
func (s *Server) decode(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBytes)
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error(), Kind: KindTooLarge})
			return false
		}
		s.badRequest(c, "invalid JSON: "+err.Error())
		return false
	}
	if dec.More() {
		s.badRequest(c, "invalid JSON: trailing data")
		return false
	}
	return true
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	s.obs.Metrics().RecordError(c.Request.Context(), c.FullPath(), KindBadRequest)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: KindBadRequest})
}

func (s *Server) fail(ctx context.Context, c *gin.Context, span trace.Span, op string, err error) {
	kind := symdiff.ErrorKind(err)
	s.obs.Tracer().RecordError(span, err, kind)
	s.obs.Metrics().RecordError(ctx, op, kind)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kind})
}

// writeCached writes v as JSON with a weak ETag, answering 304 when the
// client already holds the same body.
func (s *Server) writeCached(c *gin.Context, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Kind: KindInternal})
		return
	}
	tag := etagFor(body)
	c.Header("ETag", tag)
	if !noneMatch(c.GetHeader("If-None-Match"), tag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
