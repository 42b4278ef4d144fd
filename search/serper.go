package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the Serper Google search API.
	DefaultEndpoint = "https://google.serper.dev/search"

	// NoResults is returned by Run whenever the provider does not answer with a usable 200.
	NoResults = "No results found."
)

// Searcher is what the generation pipeline needs from a search backend.
type Searcher interface {
	Run(ctx context.Context, query string) string
}

// StatusError reports a non-200 answer from the search provider.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("serper http %d", e.StatusCode)
}

// Result holds the organic snippets of one search, in provider order.
type Result struct {
	Snippets []string
}

// Text joins the snippets with newlines.
func (r Result) Text() string {
	return strings.Join(r.Snippets, "\n")
}

// Empty reports whether the search succeeded without any snippet.
func (r Result) Empty() bool {
	return len(r.Snippets) == 0
}

// Serper calls the serper.dev search API. An API key is required via X-API-KEY.
type Serper struct {
	APIKey   string
	Endpoint string
	client   *http.Client
	logger   *log.Logger
}

// NewSerper constructs a Serper client with a 10s timeout.
func NewSerper(apiKey string) *Serper {
	return NewSerperWithClient(apiKey, &http.Client{Timeout: 10 * time.Second})
}

// NewSerperWithClient constructs a Serper client using the supplied HTTP client.
func NewSerperWithClient(apiKey string, client *http.Client) *Serper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Serper{APIKey: apiKey, Endpoint: DefaultEndpoint, client: client, logger: log.Default()}
}

// WithLogger replaces the logger used to report soft failures.
func (s *Serper) WithLogger(logger *log.Logger) *Serper {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Search posts the query and returns the organic snippets. Elements without a snippet are skipped.
func (s *Serper) Search(ctx context.Context, query string) (Result, error) {
	payload, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return Result{}, err
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("serper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, &StatusError{StatusCode: resp.StatusCode}
	}

	var data struct {
		Organic []struct {
			Title   string  `json:"title"`
			Link    string  `json:"link"`
			Snippet *string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Result{}, fmt.Errorf("serper decode: %w", err)
	}

	snippets := make([]string, 0, len(data.Organic))
	for _, item := range data.Organic {
		if item.Snippet == nil {
			continue
		}
		snippets = append(snippets, *item.Snippet)
	}
	return Result{Snippets: snippets}, nil
}

// Run is the soft-failure form of Search: any error becomes NoResults.
func (s *Serper) Run(ctx context.Context, query string) string {
	res, err := s.Search(ctx, query)
	if err != nil {
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			s.logger.Printf("[search] query=%q failed: %v", query, err)
		} else {
			s.logger.Printf("[search] query=%q status=%d", query, statusErr.StatusCode)
		}
		return NoResults
	}
	return res.Text()
}

// SearcherFunc adapts a plain function to Searcher.
type SearcherFunc func(ctx context.Context, query string) string

func (f SearcherFunc) Run(ctx context.Context, query string) string {
	return f(ctx, query)
}
