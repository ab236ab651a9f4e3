package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/episteme/server/internal/metrics"
	"github.com/rs/zerolog"
)

// Dimension is the embedding width this deployment is pinned to. The
// passages migration declares vector(384); a model change is a schema
// change, not a config toggle.
const Dimension = 384

var (
	ErrEmptyText       = errors.New("text is empty")
	ErrServiceUnusable = errors.New("embedding service returned an unusable response")
)

// Client calls the external sentence-embedding service.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type embedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embedResponse struct {
	Vector []float32 `json:"vector"`
	Model  string    `json:"model"`
}

// Embed returns the vector for one text fragment.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(embedRequest{Input: text, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("encode embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.EmbeddingLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EmbeddingRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.EmbeddingRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrServiceUnusable, resp.StatusCode)
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.EmbeddingRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrServiceUnusable, err)
	}
	if len(decoded.Vector) != Dimension {
		metrics.EmbeddingRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrServiceUnusable, len(decoded.Vector), Dimension)
	}
	metrics.EmbeddingRequests.WithLabelValues("success").Inc()
	return decoded.Vector, nil
}

// WarmUp issues a throwaway embed so the model service loads its weights
// before the first real request. Failures are logged, not fatal; the
// first real embed pays the cold-start cost instead.
func (c *Client) WarmUp(ctx context.Context) {
	start := time.Now()
	if _, err := c.Embed(ctx, "warm-up"); err != nil {
		c.logger.Warn().Err(err).Msg("embedding warm-up failed")
		return
	}
	c.logger.Info().Dur("duration", time.Since(start)).Msg("embedding service warmed up")
}
