// internal/search/pipeline/pipeline.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "intelligence-workers/internal/common/errors"
	"intelligence-workers/internal/common/logger"
	"intelligence-workers/internal/common/metrics"
	"intelligence-workers/internal/common/observability"
	"intelligence-workers/internal/search/cache"
	"intelligence-workers/internal/search/enrich"
	"intelligence-workers/internal/search/orgcontext"
	"intelligence-workers/internal/search/retriever"
	"intelligence-workers/internal/search/scoring"
	"intelligence-workers/internal/search/strategy"
	"intelligence-workers/internal/search/summary"
)

const maxEchoedVariants = 3

// Service runs complete search episodes: cache check, profile resolution,
// strategy, retrieval, scoring, enrichment, summarization, cache upsert.
type Service struct {
	orgStore  *orgcontext.Store
	retriever *retriever.Retriever
	enricher  *enrich.Enricher
	cache     *cache.Cache
	obs       *observability.Observability
	logger    logger.Logger
}

func NewService(
	orgStore *orgcontext.Store,
	ret *retriever.Retriever,
	enricher *enrich.Enricher,
	episodeCache *cache.Cache,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		orgStore:  orgStore,
		retriever: ret,
		enricher:  enricher,
		cache:     episodeCache,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run executes one search episode. Returns a typed error only for input
// validation failures and a total first-call backend failure; every other
// degradation produces a success-shaped response. Panics are caught and
// converted to the error response shape.
func (s *Service) Run(ctx context.Context, req Request) (resp *Response, err error) {
	episodeID := uuid.New().String()
	mode, params := normalizeMode(req.SearchMode)
	start := time.Now()

	log := s.logger.WithFields(map[string]interface{}{
		"episodeId": episodeID,
		"mode":      mode,
	})

	defer func() {
		if r := recover(); r != nil {
			log.Error("episode panicked", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			resp = errorResponse(req.Query, mode, apperrors.NewInternalError(fmt.Errorf("panic: %v", r)))
			err = nil
		}
		status := "success"
		if err != nil || (resp != nil && !resp.Success) {
			status = "error"
		}
		metrics.SearchEpisodesTotal.WithLabelValues(mode, status).Inc()
		metrics.SearchEpisodeDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
		if s.obs != nil {
			s.obs.RecordEpisode(ctx, mode, status)
			s.obs.RecordEpisodeDuration(ctx, time.Since(start), mode)
		}
	}()

	if strings.TrimSpace(req.Query) == "" {
		return nil, apperrors.NewInputInvalidError("query is required")
	}

	key := cache.Key(req.Query, mode)
	if req.UseCache && s.cache != nil {
		if payload, age, hit := s.cache.Get(ctx, key); hit {
			var cached Response
			if jsonErr := json.Unmarshal(payload, &cached); jsonErr == nil {
				seconds := int64(age.Seconds())
				cached.Cached = true
				cached.CacheAgeSeconds = &seconds
				log.Info("episode served from cache", map[string]interface{}{
					"cacheAgeSeconds": seconds,
				})
				return &cached, nil
			}
		}
	}

	var profile *orgcontext.Profile
	if req.OrganizationID != "" {
		profile, _ = s.orgStore.GetContext(ctx, req.OrganizationID, req.ConversationID)
	}

	enhanced := orgcontext.EnhanceQuery(req.Query, profile)
	strat := strategy.BuildStrategy(enhanced, profile)

	raw, retrieveErr := s.retriever.Retrieve(ctx, strat, params.MaxVariants, params.PerCallLimit)
	if retrieveErr != nil {
		return nil, retrieveErr
	}

	scored := scoring.Score(raw, enhanced, strat)
	if params.Enrich && s.enricher != nil {
		scored = s.enricher.Enrich(ctx, scored)
	}

	summaryText, insights := summary.Summarize(scored, req.Query)

	resp = &Response{
		Success:             true,
		Query:               req.Query,
		EnhancedQueries:     echoedVariants(strat),
		Mode:                mode,
		Results:             scored,
		Summary:             summaryText,
		Insights:            insights,
		TotalResults:        len(scored),
		OrganizationContext: contextEcho(profile),
		Timestamp:           time.Now().UTC(),
		Cached:              false,
	}

	// Always upsert on a fresh computation; useCache only governs reads.
	if s.cache != nil {
		if payload, jsonErr := json.Marshal(resp); jsonErr == nil {
			s.cache.Upsert(ctx, key, payload)
		}
	}

	log.Info("episode complete", map[string]interface{}{
		"pooled":       len(raw),
		"totalResults": len(scored),
		"durationMs":   time.Since(start).Milliseconds(),
	})

	return resp, nil
}

func echoedVariants(strat *strategy.Strategy) []string {
	texts := make([]string, 0, maxEchoedVariants)
	for _, v := range strat.Variants {
		texts = append(texts, v.Text)
		if len(texts) == maxEchoedVariants {
			break
		}
	}
	return texts
}

func contextEcho(profile *orgcontext.Profile) *OrganizationContext {
	if profile == nil {
		return nil
	}
	competitors := profile.DirectCompetitors
	if len(competitors) > 5 {
		competitors = competitors[:5]
	}
	return &OrganizationContext{
		Organization: profile.Name,
		Competitors:  competitors,
		Industry:     profile.Industry,
	}
}

// errorResponse builds the {success:false} shape for unexpected failures.
func errorResponse(query, mode string, stdErr *apperrors.StandardError) *Response {
	return &Response{
		Success:   false,
		Query:     query,
		Mode:      mode,
		Results:   []scoring.ScoredResult{},
		Summary:   "",
		Error:     stdErr.Message,
		Timestamp: time.Now().UTC(),
	}
}
