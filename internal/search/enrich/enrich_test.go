// internal/search/enrich/enrich_test.go
package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelligence-workers/internal/common/config"
	"intelligence-workers/internal/common/logger"
	"intelligence-workers/internal/search/scoring"
)

type stubFetcher struct {
	mu      sync.Mutex
	fetched []string
	content map[string]string
	err     error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.content[url], nil
}

func testEnricher(t *testing.T, fetcher Fetcher) *Enricher {
	return NewEnricher(fetcher, config.FetchConfig{
		Timeout:         1000,
		MaxConcurrent:   3,
		MinContentChars: 500,
	}, logger.NewTestLogger(t))
}

func thinResult(url string) scoring.ScoredResult {
	return scoring.ScoredResult{URL: url, Content: "thin"}
}

func fatResult(url string) scoring.ScoredResult {
	return scoring.ScoredResult{URL: url, Content: strings.Repeat("substantial content ", 40)}
}

func TestEnrichPreservesLengthAndOrder(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("fetch failed")}
	e := testEnricher(t, fetcher)

	input := []scoring.ScoredResult{
		thinResult("https://a.example/1"),
		thinResult("https://a.example/2"),
		thinResult("https://a.example/3"),
	}

	out := e.Enrich(context.Background(), input)

	require.Len(t, out, len(input))
	for i := range input {
		assert.Equal(t, input[i].URL, out[i].URL)
		assert.Equal(t, "thin", out[i].Content)
		assert.False(t, out[i].Enriched)
	}
}

func TestEnrichReplacesThinContent(t *testing.T) {
	full := strings.Repeat("extracted article body ", 50)
	fetcher := &stubFetcher{content: map[string]string{
		"https://a.example/1": full,
	}}
	e := testEnricher(t, fetcher)

	out := e.Enrich(context.Background(), []scoring.ScoredResult{thinResult("https://a.example/1")})

	require.Len(t, out, 1)
	assert.Equal(t, full, out[0].Content)
	assert.True(t, out[0].Enriched)
}

func TestEnrichSkipsResultsWithEnoughContent(t *testing.T) {
	fetcher := &stubFetcher{}
	e := testEnricher(t, fetcher)

	out := e.Enrich(context.Background(), []scoring.ScoredResult{fatResult("https://a.example/fat")})

	require.Len(t, out, 1)
	assert.Empty(t, fetcher.fetched)
	assert.False(t, out[0].Enriched)
}

func TestEnrichOnlyTouchesTopK(t *testing.T) {
	fetcher := &stubFetcher{content: map[string]string{}}
	e := testEnricher(t, fetcher)

	input := make([]scoring.ScoredResult, TopK+3)
	for i := range input {
		input[i] = thinResult("https://a.example/" + string(rune('a'+i)))
	}

	out := e.Enrich(context.Background(), input)

	require.Len(t, out, len(input))
	assert.LessOrEqual(t, len(fetcher.fetched), TopK)
}

func TestEnrichKeepsOriginalWhenFetchedContentIsShorter(t *testing.T) {
	fetcher := &stubFetcher{content: map[string]string{
		"https://a.example/1": "",
	}}
	e := testEnricher(t, fetcher)

	out := e.Enrich(context.Background(), []scoring.ScoredResult{thinResult("https://a.example/1")})

	require.Len(t, out, 1)
	assert.Equal(t, "thin", out[0].Content)
	assert.False(t, out[0].Enriched)
}

func TestEnrichEmptyInput(t *testing.T) {
	e := testEnricher(t, &stubFetcher{})
	assert.Empty(t, e.Enrich(context.Background(), nil))
}
