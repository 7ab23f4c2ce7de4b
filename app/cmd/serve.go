package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/lexcodex/codetune/llm"
	"github.com/lexcodex/codetune/optimizer"
	"github.com/lexcodex/codetune/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	var model string
	var endpoint string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the optimization API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := globalCfg
			if addr == "" {
				addr = envOrDefault("CODETUNE_ADDR", cfg.Addr)
			}
			if model == "" {
				model = envOrDefault("OLLAMA_MODEL", cfg.Model.Name)
			}
			if endpoint == "" {
				endpoint = envOrDefault("OLLAMA_ENDPOINT", cfg.Model.Endpoint)
			}

			logger := log.New(os.Stderr, "", log.LstdFlags)

			client := llm.NewClient(endpoint, model)
			client.SetDebugLogging(debug || cfg.Model.Debug)
			if cfg.Model.TimeoutSeconds > 0 {
				client.SetTimeout(time.Duration(cfg.Model.TimeoutSeconds) * time.Second)
			}

			service := &optimizer.Service{
				Model: optionsGenerator{
					client: client,
					opts: &llm.Options{
						Temperature: cfg.Model.Temperature,
						MaxTokens:   cfg.Model.MaxTokens,
						TopP:        cfg.Model.TopP,
						Stop:        cfg.Model.Stop,
					},
				},
				Logger: logger,
			}

			api := &server.APIServer{
				Service: service,
				Logger:  logger,
			}
			if cfg.Limit.RPS > 0 {
				burst := cfg.Limit.Burst
				if burst < 1 {
					burst = 1
				}
				api.Limiter = rate.NewLimiter(rate.Limit(cfg.Limit.RPS), burst)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Printf("starting codetune server on %s (model=%s endpoint=%s)", addr, model, endpoint)
			err := api.ServeContext(ctx, addr)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address")
	cmd.Flags().StringVar(&model, "model", "", "Ollama model name")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Ollama endpoint URL")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log model request/response payloads")
	return cmd
}

// optionsGenerator fixes the sampling options from config so the service
// sees the plain one-method boundary.
type optionsGenerator struct {
	client *llm.Client
	opts   *llm.Options
}

func (g optionsGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.client.GenerateWithOptions(ctx, prompt, g.opts)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
