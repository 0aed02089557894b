// Package jina provides a client for the Jina AI embeddings API.
package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the embedding operations used by the validator.
type Client interface {
	// Embed returns one embedding vector per input text, in input order.
	// Identical inputs always yield identical vectors within a process.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Option configures the Jina client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps requests per second against the API.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	limiter *rate.Limiter

	mu    sync.Mutex
	cache map[string][]float64
}

// NewClient creates a new Jina embeddings client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.jina.ai/v1/embeddings",
		model:   "jina-embeddings-v3",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		cache:   make(map[string][]float64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []embedItem `json:"data"`
}

type embedItem struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// Embed resolves each text from the process-local cache first and batches
// the misses into a single API call. The cache is what makes similarity
// scoring deterministic across re-renders of the same run.
func (c *httpClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))

	c.mu.Lock()
	var misses []string
	missSet := make(map[string]bool)
	for i, t := range texts {
		if vec, ok := c.cache[t]; ok {
			out[i] = vec
		} else if !missSet[t] {
			missSet[t] = true
			misses = append(misses, t)
		}
	}
	c.mu.Unlock()

	if len(misses) == 0 {
		return out, nil
	}

	vectors, err := c.fetch(ctx, misses)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i, t := range misses {
		c.cache[t] = vectors[i]
	}
	for i, t := range texts {
		if out[i] == nil {
			out[i] = c.cache[t]
		}
	}
	c.mu.Unlock()

	return out, nil
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// fetch calls the embeddings endpoint with exponential backoff on transient
// failures (429, 500, 502, 503).
func (c *httpClient) fetch(ctx context.Context, texts []string) ([][]float64, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "jina: rate limit wait")
		}
	}

	payload, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, eris.Wrap(err, "jina: marshal request")
	}

	const maxAttempts = 3
	backoff := 1 * time.Second

	var body []byte
	var statusCode int
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, eris.Wrap(reqErr, "jina: create request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := c.http.Do(req)
		if doErr != nil {
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, eris.Wrap(doErr, "jina: request failed")
		}

		body, err = readAll(resp)
		statusCode = resp.StatusCode
		if err != nil {
			return nil, err
		}

		if retryableStatusCode(statusCode) && attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}
		break
	}

	if statusCode != http.StatusOK {
		return nil, eris.Errorf("jina: unexpected status %d: %s", statusCode, string(body))
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "jina: unmarshal response")
	}
	if len(parsed.Data) != len(texts) {
		return nil, eris.Errorf("jina: expected %d embeddings, got %d", len(texts), len(parsed.Data))
	}

	// The API documents index-tagged results; order by index rather than
	// trusting response order.
	sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })

	vectors := make([][]float64, len(texts))
	for i, item := range parsed.Data {
		if len(item.Embedding) == 0 {
			return nil, eris.Errorf("jina: empty embedding at index %d", i)
		}
		vectors[i] = item.Embedding
	}
	return vectors, nil
}

func readAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close() //nolint:errcheck
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, eris.Wrap(err, "jina: read response body")
	}
	return buf.Bytes(), nil
}
