package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lexcodex/codetune/optimizer"
)

// APIServer exposes the optimization pipeline over HTTP.
type APIServer struct {
	Service *optimizer.Service
	Logger  *log.Logger
	Limiter *rate.Limiter
}

type errorResponse struct {
	Error string `json:"error"`
}

// optimizeRequest keeps code untyped until validated: a missing or
// non-string code field must come back as a 400, not a decode error.
type optimizeRequest struct {
	Language string      `json:"language"`
	Code     interface{} `json:"code"`
}

// Serve starts listening on the provided address.
func (s *APIServer) Serve(addr string) error {
	return s.ServeContext(context.Background(), addr)
}

// ServeContext allows the caller to control shutdown via context
// cancellation.
func (s *APIServer) ServeContext(ctx context.Context, addr string) error {
	server := s.newHTTPServer(addr)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	if s.Logger != nil {
		s.Logger.Printf("API listening on %s", addr)
	}
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *APIServer) newHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
}

// Handler builds the route table. Exposed for tests.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/optimize", s.handleOptimize)
	mux.HandleFunc("/", s.handleHealth)
	return corsMiddleware(mux)
}

func (s *APIServer) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.Limiter != nil && !s.Limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
		return
	}

	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	code, ok := req.Code.(string)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "`code` must be a string"})
		return
	}

	reqID := uuid.NewString()
	s.logf("optimize %s language=%q code_bytes=%d", reqID, req.Language, len(code))

	resp, err := s.Service.Optimize(r.Context(), optimizer.Request{
		Language: req.Language,
		Code:     code,
	})
	if err != nil {
		s.logf("optimize %s failed: %v", reqID, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("LLM error: %s", err)})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *APIServer) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
