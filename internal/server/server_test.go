package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	symdiff "github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/observability"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(opts ...Option) *Server {
	return New(symdiff.New(), append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer().Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestSchema(t *testing.T) {
	w := do(t, newTestServer().Handler(), http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"differentiate"`)
	assert.True(t, json.Valid(w.Body.Bytes()))
}

func TestDerive(t *testing.T) {
	w := do(t, newTestServer().Handler(), http.MethodPost, "/v1/derive", `{"expr":"x^2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp deriveResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "x^{2}", resp.Input)
	assert.Equal(t, "2 x^{1}", resp.Derivative)
	assert.Equal(t, "2 x", resp.Simplified)
	require.Len(t, resp.Steps, 2)
	assert.Equal(t, symdiff.RulePower, resp.Steps[0].Rule)
	assert.Equal(t, symdiff.RuleSimplification, resp.Steps[1].Rule)
}

func TestDerive_OtherVariable(t *testing.T) {
	w := do(t, newTestServer().Handler(), http.MethodPost, "/v1/derive", `{"expr":"x*y","var":"y"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp deriveResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "x", resp.Simplified)
}

func TestDerive_ETag(t *testing.T) {
	h := newTestServer().Handler()
	first := do(t, h, http.MethodPost, "/v1/derive", `{"expr":"sin(x)"}`)
	require.Equal(t, http.StatusOK, first.Code)
	tag := first.Header().Get("ETag")
	require.True(t, strings.HasPrefix(tag, `W/"`), "unexpected ETag %q", tag)

	again := do(t, h, http.MethodPost, "/v1/derive", `{"expr":"sin(x)"}`)
	assert.Equal(t, tag, again.Header().Get("ETag"), "same input should give the same ETag")

	cached := do(t, h, http.MethodPost, "/v1/derive", `{"expr":"sin(x)"}`, "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())

	other := do(t, h, http.MethodPost, "/v1/derive", `{"expr":"cos(x)"}`, "If-None-Match", tag)
	assert.Equal(t, http.StatusOK, other.Code)
	assert.NotEqual(t, tag, other.Header().Get("ETag"))
}

func TestDerive_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"unsupported function", `{"expr":"sec(x)"}`, http.StatusBadRequest, symdiff.KindUnsupportedFunction},
		{"lex error", `{"expr":"2 $ x"}`, http.StatusBadRequest, symdiff.KindLex},
		{"parse error", `{"expr":"x +"}`, http.StatusBadRequest, symdiff.KindParse},
		{"too deep", `{"expr":"` + strings.Repeat("-", 400) + `x"}`, http.StatusBadRequest, symdiff.KindTooDeep},
		{"missing expr", `{"var":"x"}`, http.StatusBadRequest, KindBadRequest},
		{"unknown field", `{"expr":"x","extra":1}`, http.StatusBadRequest, KindBadRequest},
		{"trailing data", `{"expr":"x"} {}`, http.StatusBadRequest, KindBadRequest},
		{"not json", `expr=x`, http.StatusBadRequest, KindBadRequest},
	}
	h := newTestServer().Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/derive", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			var resp errorResponse
			decodeBody(t, w, &resp)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	h := newTestServer(WithMaxBodyBytes(16)).Handler()
	w := do(t, h, http.MethodPost, "/v1/derive", `{"expr":"`+strings.Repeat("x+", 64)+`x"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var resp errorResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, KindTooLarge, resp.Kind)
}

func TestSimplify(t *testing.T) {
	w := do(t, newTestServer().Handler(), http.MethodPost, "/v1/simplify", `{"expr":"x + x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp simplifyResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "x + x", resp.Input)
	assert.Equal(t, "2 x", resp.Simplified)
	assert.NotEmpty(t, w.Header().Get("ETag"))
}

func TestTool(t *testing.T) {
	h := newTestServer().Handler()
	w := do(t, h, http.MethodPost, "/tool", `{"tool":"differentiate","params":{"expr":"x^2"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp symdiff.ToolResponse
	decodeBody(t, w, &resp)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "2 x", resp.LaTeX)

	w = do(t, h, http.MethodPost, "/tool", `{"tool":"nope"}`)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &resp)
	assert.Equal(t, symdiff.KindUnknown, resp.Kind)

	w = do(t, h, http.MethodPost, "/tool", `{"tool":"parse","bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestID(t *testing.T) {
	h := newTestServer().Handler()

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Len(t, w.Header().Get(HeaderRequestID), 36, "generated id should be a UUID")

	w = do(t, h, http.MethodGet, "/health", "", HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := New(symdiff.New(), WithLogger(logger))

	do(t, s.Handler(), http.MethodGet, "/health", "", HeaderRequestID, "req-1")
	out := buf.String()
	assert.Contains(t, out, "msg=request")
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "path=/health")
}

func TestRecovery(t *testing.T) {
	s := newTestServer(WithDebug(true))
	s.Router().GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := do(t, s.Handler(), http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, KindInternal, body["kind"])
	assert.Equal(t, "kaboom", body["detail"])
}

func TestCORS(t *testing.T) {
	h := newTestServer().Handler()
	w := do(t, h, http.MethodOptions, "/v1/derive", "",
		"Origin", "https://client.example",
		"Access-Control-Request-Method", "POST")
	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	restricted := newTestServer(WithAllowOrigins("https://allowed.example")).Handler()
	w = do(t, restricted, http.MethodGet, "/health", "", "Origin", "https://allowed.example")
	assert.Equal(t, "https://allowed.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerTiming(t *testing.T) {
	obs := observability.NewConfig(observability.WithServerTiming())
	h := newTestServer(WithObservability(obs)).Handler()

	w := do(t, h, http.MethodPost, "/v1/derive", `{"expr":"x^3"}`)
	require.Equal(t, http.StatusOK, w.Code)
	header := w.Header().Get("Server-Timing")
	for _, phase := range []string{
		observability.TimingLex,
		observability.TimingParse,
		observability.TimingDerive,
		observability.TimingSimplify,
		observability.TimingRender,
	} {
		assert.Contains(t, header, phase)
	}

	w = do(t, newTestServer().Handler(), http.MethodPost, "/v1/derive", `{"expr":"x^3"}`)
	assert.Empty(t, w.Header().Get("Server-Timing"), "timing header should be off by default")
}

func TestNew_DefaultObservability(t *testing.T) {
	s := newTestServer()
	require.NotNil(t, s.obs)
	assert.Same(t, s.obs.Tracer(), s.obs.Tracer())
	assert.Same(t, s.obs.Metrics(), s.obs.Metrics())
	assert.False(t, s.obs.ServerTimingEnabled())

	w := do(t, s.Handler(), http.MethodPost, "/v1/derive", `{"expr":"x^3"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.MaxDepth = 8
	cfg.Server.ServerTiming = true

	s, err := FromConfig(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 8, s.engine.MaxDepth())
	assert.True(t, s.obs.ServerTimingEnabled())

	w := do(t, s.Handler(), http.MethodPost, "/v1/derive", `{"expr":"`+strings.Repeat("-", 20)+`x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp errorResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, symdiff.KindTooDeep, resp.Kind)

	cfg.Server.MaxBodyBytes = 0
	_, err = FromConfig(cfg, quietLogger())
	assert.Error(t, err)
	cfg.Server.MaxBodyBytes = config.Default().Server.MaxBodyBytes

	srv := NewHTTPServer(cfg.Server, s.Handler())
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, cfg.Server.ReadHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, cfg.Server.IdleTimeout, srv.IdleTimeout)
}

func TestETagHelpers(t *testing.T) {
	assert.Equal(t, "abc", parseETag(`W/"abc"`))
	assert.Equal(t, "abc", parseETag(`"abc"`))
	assert.Equal(t, "abc", parseETag(`abc`))
	assert.Equal(t, "", parseETag(""))

	tag := etagFor([]byte("body"))
	assert.True(t, noneMatch("", tag))
	assert.False(t, noneMatch(tag, tag))
	assert.False(t, noneMatch(`"zzz", `+tag, tag))
	assert.True(t, noneMatch(`W/"zzz"`, tag))
	assert.False(t, noneMatch("*", tag))
}
