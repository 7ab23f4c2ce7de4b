package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one blocking completion call. Local code models can
// chew on a large file for a while, so this is generous.
const DefaultTimeout = 120 * time.Second

// Client talks to an Ollama server's generate endpoint.
type Client struct {
	Endpoint string
	Model    string
	client   *http.Client
	Debug    bool
}

// Options tunes a single completion. Zero values are omitted from the
// request so the server's own defaults apply.
type Options struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
	Stop        []string
}

type generateResponse struct {
	Text     string `json:"text"`
	Response string `json:"response"`
}

// NewClient builds a new Ollama client.
func NewClient(endpoint, model string) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:11434"
	}
	return &Client{
		Endpoint: endpoint,
		Model:    model,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// SetTimeout overrides the per-call HTTP timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.getHTTPClient().Timeout = d
	}
}

// SetDebugLogging enables or disables verbose logging of request and
// response payloads.
func (c *Client) SetDebugLogging(enabled bool) {
	c.Debug = enabled
}

// Generate runs a single non-streaming completion and returns the raw text
// exactly as the model produced it.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.GenerateWithOptions(ctx, prompt, nil)
}

// GenerateWithOptions is Generate with per-call sampling options.
func (c *Client) GenerateWithOptions(ctx context.Context, prompt string, options *Options) (string, error) {
	payload := map[string]interface{}{
		"model":  c.Model,
		"prompt": prompt,
		"stream": false,
	}
	applyOptions(payload, options)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	c.logf("request /api/generate payload: %s", truncate(string(body), 2048))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(msg))
		if detail != "" {
			return "", fmt.Errorf("ollama error: %s: %s", resp.Status, detail)
		}
		return "", fmt.Errorf("ollama error: %s", resp.Status)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	c.logf("response /api/generate payload: %s", truncate(string(responseBody), 2048))

	var raw generateResponse
	if err := json.Unmarshal(responseBody, &raw); err != nil {
		return "", err
	}
	return firstNonEmpty(raw.Response, raw.Text), nil
}

func (c *Client) getHTTPClient() *http.Client {
	if c.client != nil {
		return c.client
	}
	c.client = &http.Client{Timeout: DefaultTimeout}
	return c.client
}

func applyOptions(payload map[string]interface{}, options *Options) {
	if options == nil {
		return
	}
	if options.Temperature != 0 {
		payload["temperature"] = options.Temperature
	}
	if options.MaxTokens != 0 {
		payload["max_tokens"] = options.MaxTokens
	}
	if options.TopP != 0 {
		payload["top_p"] = options.TopP
	}
	if options.Stop != nil {
		payload["stop"] = options.Stop
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) logf(format string, args ...interface{}) {
	if !c.Debug {
		return
	}
	log.Printf("[ollama] "+format, args...)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
