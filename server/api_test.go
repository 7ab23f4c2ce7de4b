package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/lexcodex/codetune/optimizer"
)

type stubGenerator struct {
	output string
	err    error
}

func (g stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.output, g.err
}

func newTestServer(gen optimizer.Generator) *APIServer {
	return &APIServer{
		Service: &optimizer.Service{Model: gen},
	}
}

func postOptimize(t *testing.T, api *APIServer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/optimize", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func TestOptimizeEndToEnd(t *testing.T) {
	api := newTestServer(stubGenerator{
		output: "```json\n{\"optimized_code\":\"int main(void){}\",\"suggestions\":[\"use void\"],\"metrics\":{\"Lines of Code Reduced\":0}}\n```",
	})

	rec := postOptimize(t, api, `{"language":"c","code":"int main(){}"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp optimizer.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "int main(void){}", resp.OptimizedCode)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "S1", resp.Suggestions[0].ID)
	assert.Equal(t, "c", resp.Metrics.Language)
	assert.Equal(t, 0, resp.Metrics.Reduction)
}

func TestOptimizeMissingCode(t *testing.T) {
	api := newTestServer(stubGenerator{output: "{}"})

	rec := postOptimize(t, api, `{"language":"c"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "`code` must be a string", resp["error"])
}

func TestOptimizeNonStringCode(t *testing.T) {
	api := newTestServer(stubGenerator{output: "{}"})

	rec := postOptimize(t, api, `{"language":"c","code":42}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "`code` must be a string", resp["error"])
}

func TestOptimizeMalformedBody(t *testing.T) {
	api := newTestServer(stubGenerator{output: "{}"})
	rec := postOptimize(t, api, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeModelFailure(t *testing.T) {
	api := newTestServer(stubGenerator{err: errors.New("connection refused")})

	rec := postOptimize(t, api, `{"language":"c","code":"x"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "LLM error:")
	assert.Contains(t, resp["error"], "connection refused")
}

func TestOptimizeExtractionFailure(t *testing.T) {
	api := newTestServer(stubGenerator{output: "no structured output today"})

	rec := postOptimize(t, api, `{"language":"c","code":"x"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "LLM error:")
	// The raw model text is logged, never echoed back.
	assert.NotContains(t, resp["error"], "no structured output today")
}

func TestOptimizeMethodNotAllowed(t *testing.T) {
	api := newTestServer(stubGenerator{output: "{}"})
	req := httptest.NewRequest(http.MethodGet, "/optimize", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestOptimizeRateLimited(t *testing.T) {
	api := newTestServer(stubGenerator{output: "{}"})
	api.Limiter = rate.NewLimiter(rate.Limit(0), 0)

	rec := postOptimize(t, api, `{"language":"c","code":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestPreflightRequest(t *testing.T) {
	api := newTestServer(stubGenerator{output: "{}"})
	req := httptest.NewRequest(http.MethodOptions, "/optimize", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestHealthProbe(t *testing.T) {
	api := newTestServer(stubGenerator{output: "{}"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["ok"])
}
