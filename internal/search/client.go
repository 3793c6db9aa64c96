// Package search wraps the external web-search service. Results lacking a
// URL are dropped at this boundary per the capability contract. A Redis
// cache in front of the backend keeps repeated queries within one research
// window cheap; the limiter protects the backend from fan-out bursts.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/draftwright/draftwright/internal/metrics"
)

// RawResult is one uninterpreted search hit. PublishedAt is whatever the
// backend reported and is frequently missing.
type RawResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	PublishedAt string `json:"published_at,omitempty"`
	Source      string `json:"source,omitempty"`
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []RawResult `json:"results"`
}

// Options configures a search Client.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	RPS      float64       // requests per second against the backend, 0 disables limiting
	Cache    *redis.Client // optional
	CacheTTL time.Duration
}

// Client talks to the search backend. Safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewClient builds a search client from opts.
func NewClient(opts Options, logger *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	var limiter *rate.Limiter
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Client{
		baseURL:  opts.BaseURL,
		http:     &http.Client{Timeout: timeout},
		limiter:  limiter,
		cache:    opts.Cache,
		cacheTTL: ttl,
		logger:   logger,
	}
}

func cacheKey(query string, maxResults int) string {
	return fmt.Sprintf("search:%d:%s", maxResults, query)
}

// Search returns up to maxResults hits for query. Zero results is not an
// error. Hits without a URL are discarded.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]RawResult, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey(query, maxResults)).Bytes(); err == nil {
			var results []RawResult
			if err := json.Unmarshal(cached, &results); err == nil {
				metrics.SearchCacheHits.Inc()
				return results, nil
			}
		}
		metrics.SearchCacheMisses.Inc()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("search rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(searchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("call search service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	metrics.SearchRequests.WithLabelValues("ok").Inc()

	results := make([]RawResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, r)
	}

	if c.cache != nil {
		if encoded, err := json.Marshal(results); err == nil {
			if err := c.cache.Set(ctx, cacheKey(query, maxResults), encoded, c.cacheTTL).Err(); err != nil {
				c.logger.Warn("Failed to cache search results", zap.String("query", query), zap.Error(err))
			}
		}
	}

	c.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}
