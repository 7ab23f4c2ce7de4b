package optimizer

import (
	"context"
	"fmt"
	"log"
)

// Generator is the narrow boundary to the model backend: prompt in,
// completion text out. Keeping it one method lets tests run the whole
// pipeline without a live model server.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service runs the optimization pipeline for one request at a time. It
// holds no per-request state, so a single instance is safe to share across
// concurrent handlers.
type Service struct {
	Model  Generator
	Logger *log.Logger
}

// Optimize builds the prompt, calls the model, and normalizes the raw
// completion into the canonical response shape. Model and extraction
// failures abort the request wholesale; once extraction succeeds the rest
// of the pipeline cannot fail.
func (s *Service) Optimize(ctx context.Context, req Request) (*Response, error) {
	prompt := BuildPrompt(req.Language, req.Code)

	raw, err := s.Model.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	parsed, err := ExtractJSON(raw)
	if err != nil {
		// The raw completion never reaches the client, but it is the
		// only way to diagnose extraction failures.
		s.logf("extraction failed: %v; raw model output: %s", err, raw)
		return nil, err
	}

	resp := &Response{
		OptimizedCode: stringField(parsed, req.Code, "optimized_code"),
		Suggestions:   NormalizeSuggestions(listField(parsed, "suggestions")),
		Metrics:       NormalizeMetrics(objectField(parsed, "metrics"), req.Language, req.Code),
	}
	return resp, nil
}

func (s *Service) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func listField(m map[string]any, key string) []any {
	if l, ok := m[key].([]any); ok {
		return l
	}
	return nil
}

func objectField(m map[string]any, key string) map[string]any {
	if o, ok := m[key].(map[string]any); ok {
		return o
	}
	return nil
}
