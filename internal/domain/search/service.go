package search

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Hit is one semantic match: the passage plus where it lives.
type Hit struct {
	CaseULID  string  `json:"case_ulid"`
	EventULID string  `json:"event_ulid"`
	Passage   string  `json:"passage"`
	Score     float32 `json:"score"`
}

// Result is one search response page.
type Result struct {
	Query string        `json:"query"`
	Hits  []Hit         `json:"hits"`
	Took  time.Duration `json:"-"`
}

// Embedder turns query text into a vector. Satisfied by the embedding
// client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PassageIndex runs nearest-neighbor lookups over stored passages.
type PassageIndex interface {
	Nearest(ctx context.Context, vector []float32, limit int) ([]Hit, error)
}

type Service struct {
	embedder Embedder
	index    PassageIndex
}

func NewService(embedder Embedder, index PassageIndex) *Service {
	return &Service{embedder: embedder, index: index}
}

// QueryError reports an unusable search request.
type QueryError struct {
	Message string
}

func (e QueryError) Error() string { return e.Message }

// Search embeds the query and returns the closest passages across all
// cases.
func (s *Service) Search(ctx context.Context, query string, limit int) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, QueryError{Message: "query is required"}
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	start := time.Now()
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Nearest(ctx, vector, limit)
	if err != nil {
		return Result{}, fmt.Errorf("nearest passages: %w", err)
	}

	return Result{Query: query, Hits: hits, Took: time.Since(start)}, nil
}
