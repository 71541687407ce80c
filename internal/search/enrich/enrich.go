// internal/search/enrich/enrich.go
package enrich

import (
	"context"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"

	"intelligence-workers/internal/common/config"
	"intelligence-workers/internal/common/logger"
	"intelligence-workers/internal/common/metrics"
	"intelligence-workers/internal/search/scoring"
)

// TopK bounds how many thin results get a secondary fetch per episode.
const TopK = 5

// Fetcher retrieves the main content of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ReadabilityFetcher extracts article text with a boilerplate-stripping
// parser. One fetch per URL, bounded by the configured timeout.
type ReadabilityFetcher struct {
	timeout time.Duration
}

func NewReadabilityFetcher(timeout time.Duration) *ReadabilityFetcher {
	return &ReadabilityFetcher{timeout: timeout}
}

func (f *ReadabilityFetcher) Fetch(_ context.Context, url string) (string, error) {
	article, err := readability.FromURL(url, f.timeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.TextContent), nil
}

// Enricher upgrades thin results with a secondary content fetch. Best
// effort: a failed fetch leaves the original result untouched, and the
// output always has the same length and order as the input.
type Enricher struct {
	fetcher         Fetcher
	logger          logger.Logger
	minContentChars int
	maxConcurrent   int
}

func NewEnricher(fetcher Fetcher, cfg config.FetchConfig, log logger.Logger) *Enricher {
	minChars := cfg.MinContentChars
	if minChars <= 0 {
		minChars = 500
	}
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = TopK
	}
	return &Enricher{
		fetcher:         fetcher,
		logger:          log.WithFields(map[string]interface{}{"component": "enricher"}),
		minContentChars: minChars,
		maxConcurrent:   maxConc,
	}
}

// Enrich fetches fuller content for up to TopK thin results. Results that
// already carry enough content pass through unchanged. Fetches fan out
// concurrently and join back in input order.
func (e *Enricher) Enrich(ctx context.Context, results []scoring.ScoredResult) []scoring.ScoredResult {
	if len(results) == 0 {
		return results
	}

	k := len(results)
	if k > TopK {
		k = TopK
	}

	enriched := make([]scoring.ScoredResult, len(results))
	copy(enriched, results)

	sem := make(chan struct{}, e.maxConcurrent)
	var wg sync.WaitGroup

	for i := 0; i < k; i++ {
		if len(enriched[i].Content) > e.minContentChars {
			continue
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			content, err := e.fetcher.Fetch(ctx, enriched[idx].URL)
			if err != nil || len(content) <= len(enriched[idx].Content) {
				metrics.EnrichmentFetchesTotal.WithLabelValues("failed").Inc()
				if err != nil {
					e.logger.Debug("enrichment fetch failed, keeping original", map[string]interface{}{
						"url":   enriched[idx].URL,
						"error": err.Error(),
					})
				}
				return
			}

			metrics.EnrichmentFetchesTotal.WithLabelValues("success").Inc()
			enriched[idx].Content = content
			enriched[idx].Enriched = true
		}(i)
	}

	wg.Wait()
	return enriched
}
