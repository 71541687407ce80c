// internal/search/retriever/backend.go
package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"intelligence-workers/internal/common/config"
	httpclient "intelligence-workers/internal/common/http"
	"intelligence-workers/internal/common/logger"
	"intelligence-workers/internal/common/metrics"
)

// BackendRequest is the wire request for the external retrieval backend.
type BackendRequest struct {
	Query             string   `json:"query"`
	SourceCategories  []string `json:"source_categories"`
	ResultLimit       int      `json:"result_limit"`
	RecencyFilter     string   `json:"recency_filter,omitempty"`
	ContentMaxAgeDays int      `json:"content_max_age_days,omitempty"`
	ContentCategories []string `json:"content_categories,omitempty"`
	PreferredDomains  []string `json:"preferred_domains,omitempty"`
	ExcludedDomains   []string `json:"excluded_domains,omitempty"`
}

// BackendResult is a single hit returned by the backend.
type BackendResult struct {
	URL      string `json:"url"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// BackendResponse is the wire response envelope.
type BackendResponse struct {
	Results []BackendResult `json:"results"`
}

// Backend abstracts the retrieval backend so tests can stub it.
type Backend interface {
	Search(ctx context.Context, req BackendRequest) ([]BackendResult, error)
}

// HTTPBackend calls the retrieval backend over HTTPS with bearer auth and a
// client-side rate limit.
type HTTPBackend struct {
	baseURL string
	apiKey  string
	client  *httpclient.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

func NewHTTPBackend(cfg config.BackendConfig, log logger.Logger) *HTTPBackend {
	rpm := cfg.RPM
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &HTTPBackend{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpclient.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		logger:  log.WithFields(map[string]interface{}{"component": "search_backend"}),
	}
}

func (b *HTTPBackend) Search(ctx context.Context, req BackendRequest) ([]BackendResult, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding backend request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	start := time.Now()
	resp, err := b.client.Do(httpReq)
	metrics.BackendCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendCallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("backend call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.BackendCallsTotal.WithLabelValues("error").Inc()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		b.logger.Warn("backend returned non-200", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(payload),
		})
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var decoded BackendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.BackendCallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decoding backend response: %w", err)
	}

	metrics.BackendCallsTotal.WithLabelValues("success").Inc()
	return decoded.Results, nil
}
