// internal/workers/intelligence/run-search/handler_test.go
package runsearch

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelligence-workers/internal/common/config"
	apperrors "intelligence-workers/internal/common/errors"
	"intelligence-workers/internal/common/logger"
	"intelligence-workers/internal/search/cache"
	"intelligence-workers/internal/search/enrich"
	"intelligence-workers/internal/search/orgcontext"
	"intelligence-workers/internal/search/pipeline"
	"intelligence-workers/internal/search/retriever"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:    10 * time.Second,
		MaxRetries: 2,
	}
}

type cannedBackend struct {
	results []retriever.BackendResult
	err     error
}

func (b *cannedBackend) Search(_ context.Context, _ retriever.BackendRequest) ([]retriever.BackendResult, error) {
	return b.results, b.err
}

type failingFetcher struct{}

func (failingFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("unreachable")
}

func newTestHandler(t *testing.T, backend retriever.Backend) *Handler {
	log := logger.NewTestLogger(t)
	service := pipeline.NewService(
		orgcontext.NewStore(nil, log),
		retriever.NewRetriever(backend, log),
		enrich.NewEnricher(failingFetcher{}, config.FetchConfig{MinContentChars: 500, MaxConcurrent: 2}, log),
		cache.New(cache.NewMemoryStore(), cache.DefaultTTL, log),
		nil,
		log,
	)
	return NewHandler(createTestConfig(), service, log)
}

func cannedResults(n int) []retriever.BackendResult {
	body := strings.Repeat("Detailed coverage of the Acme Corp launch continued across the trade press. ", 30)
	out := make([]retriever.BackendResult, n)
	for i := range out {
		out[i] = retriever.BackendResult{
			URL:     fmt.Sprintf("https://news.example/acme-launch-%d", i),
			Content: fmt.Sprintf("# Acme Corp launch coverage part %d\n\nAcme Corp launch details emerged in part %d.\n\n%s", i, i, body),
		}
	}
	return out
}

func TestExecuteSuccessfulEpisode(t *testing.T) {
	handler := newTestHandler(t, &cannedBackend{results: cannedResults(3)})

	output, err := handler.Execute(context.Background(), &Input{
		Query:      "Acme Corp launch",
		SearchMode: "focused",
	})

	require.NoError(t, err)
	require.NotNil(t, output)

	assert.Equal(t, true, output.SearchResult["success"])
	assert.Equal(t, "Acme Corp launch", output.SearchResult["query"])
	assert.Equal(t, "focused", output.SearchResult["mode"])
	assert.NotEmpty(t, output.SearchResult["results"])
	assert.NotEmpty(t, output.SearchResult["summary"])
}

func TestExecuteEmptyQueryFails(t *testing.T) {
	handler := newTestHandler(t, &cannedBackend{})

	_, err := handler.Execute(context.Background(), &Input{Query: ""})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInputInvalid))
	assert.False(t, apperrors.IsRetryable(err))
}

func TestExecuteBackendUnavailableIsRetryable(t *testing.T) {
	handler := newTestHandler(t, &cannedBackend{err: fmt.Errorf("connect: connection refused")})

	_, err := handler.Execute(context.Background(), &Input{Query: "Acme Corp news"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeBackendUnavailable))
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, 2, apperrors.GetRetryCount(apperrors.ErrCodeBackendUnavailable))
}

func TestValidateInput(t *testing.T) {
	handler := newTestHandler(t, &cannedBackend{})

	tests := []struct {
		name      string
		variables string
		wantError bool
	}{
		{"valid minimal", `{"query":"Acme Corp news"}`, false},
		{"valid full", `{"query":"q","organizationId":"org-1","searchMode":"quick","useCache":true}`, false},
		{"missing query", `{"searchMode":"focused"}`, true},
		{"empty query", `{"query":""}`, true},
		{"bad mode", `{"query":"q","searchMode":"everything"}`, true},
		{"wrong type", `{"query":42}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler.validateInput(tt.variables)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrCodeInputInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExecuteZeroResultsCompletesJob(t *testing.T) {
	handler := newTestHandler(t, &cannedBackend{})

	output, err := handler.Execute(context.Background(), &Input{Query: "unmatched topic"})

	require.NoError(t, err)
	assert.Equal(t, true, output.SearchResult["success"])
	assert.Equal(t, float64(0), output.SearchResult["totalResults"])

	summary, _ := output.SearchResult["summary"].(string)
	assert.True(t, strings.HasPrefix(summary, "No relevant results found"))
}
