// Package search - клиент Ollama web search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrEmptyQuery = errors.New("empty search query")

// StatusError - ответ API с кодом, отличным от 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("web search: status %d: %s", e.Code, e.Body)
}

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Results - ранжированные результаты поиска. String используется как ответ инструмента.
type Results []Result

func (r Results) String() string {
	if len(r) == 0 {
		return "no results"
	}

	var b strings.Builder
	for i, res := range r {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s\n%s\n%s", i+1, res.Title, res.URL, strings.TrimSpace(res.Content))
	}
	return b.String()
}

type Config struct {
	URL          string
	APIKey       string
	MaxResults   int
	Timeout      time.Duration
	Retries      int
	RetryDelay   time.Duration
	MaxFailures  int
	ResetTimeout time.Duration
}

type Client struct {
	http       *http.Client
	url        string
	apiKey     string
	maxResults int
	retries    int
	retryDelay time.Duration
	breaker    *CircuitBreaker
	log        *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = "https://ollama.com/api/web_search"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		breaker:    NewCircuitBreaker(cfg.MaxFailures, cfg.ResetTimeout),
		log:        log,
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results Results `json:"results"`
}

// Search возвращает не более MaxResults результатов по запросу.
func (c *Client) Search(ctx context.Context, query string) (Results, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	var results Results
	err := c.breaker.Call(func() error {
		return retryWithBackoff(ctx, c.retries, c.retryDelay, isRetryable, func() error {
			var err error
			results, err = c.do(ctx, query)
			return err
		})
	})
	if err != nil {
		c.log.Warn("Ошибка веб-поиска",
			zap.String("query", query),
			zap.String("breaker", c.breaker.State().String()),
			zap.Error(err))
		return nil, err
	}

	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}

	c.log.Debug("Веб-поиск выполнен", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

func (c *Client) do(ctx context.Context, query string) (Results, error) {
	body, err := json.Marshal(searchRequest{Query: query, MaxResults: c.maxResults})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode web search response: %w", err)
	}
	return out.Results, nil
}

func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
