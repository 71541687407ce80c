// internal/search/retriever/retriever.go
package retriever

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	apperrors "intelligence-workers/internal/common/errors"
	"intelligence-workers/internal/common/logger"
	"intelligence-workers/internal/search/strategy"
)

// RawResult is a deduplicated backend hit annotated with the variant that
// produced it.
type RawResult struct {
	URL      string
	Content  string
	Category string
	Variant  strategy.Variant
}

// Retriever executes query variants against the backend and pools the
// results. Best-effort across variants: a variant failure after the pool has
// content is logged and skipped.
type Retriever struct {
	backend Backend
	logger  logger.Logger
}

func NewRetriever(backend Backend, log logger.Logger) *Retriever {
	return &Retriever{
		backend: backend,
		logger:  log.WithFields(map[string]interface{}{"component": "retriever"}),
	}
}

// recencyFilter maps a temporal window onto the coarse recency buckets the
// backend supports.
func recencyFilter(w strategy.Window) string {
	switch w {
	case strategy.WindowHour:
		return "hour"
	case strategy.WindowDay:
		return "day"
	case strategy.Window3Day, strategy.WindowWeek:
		return "week"
	case strategy.Window2Week, strategy.WindowMonth:
		return "month"
	default:
		return "year"
	}
}

// maxAgeDays bounds content age in days for the finer-grained filter.
func maxAgeDays(w strategy.Window) int {
	switch w {
	case strategy.WindowHour, strategy.WindowDay:
		return 1
	case strategy.Window3Day:
		return 3
	case strategy.WindowWeek:
		return 7
	case strategy.Window2Week:
		return 14
	case strategy.WindowMonth:
		return 30
	case strategy.Window3Month:
		return 90
	case strategy.Window6Month:
		return 180
	default:
		return 365
	}
}

// categoryHintRules is an ordered table mapping variant text onto backend
// content-category hints. First match wins.
var categoryHintRules = []struct {
	pattern    *regexp.Regexp
	categories []string
}{
	{regexp.MustCompile(`(?i)\b(research|paper|study|arxiv|journal)\b`), []string{"research paper", "academic"}},
	{regexp.MustCompile(`(?i)\b(docs?|documentation|reference|manual|api)\b`), []string{"reference", "documentation"}},
	{regexp.MustCompile(`(?i)\b(github|code|library|sdk|open[- ]source)\b`), []string{"code", "repository"}},
}

func contentCategories(text string) []string {
	for _, rule := range categoryHintRules {
		if rule.pattern.MatchString(text) {
			return rule.categories
		}
	}
	return nil
}

// matchesDomain reports whether the URL's host is one of the domains or a
// subdomain of one.
func matchesDomain(rawURL string, domains []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Retrieve runs up to maxVariants variants in order and pools deduplicated
// results. The first occurrence of a URL wins; later variants cannot
// displace it. Stops early once the pool holds roughly twice the per-call
// limit. Returns an empty (non-nil error-free) pool when every call fails
// after the first succeeded or produced partial data; only a first-call
// transport failure with nothing retrieved surfaces as a typed error.
func (r *Retriever) Retrieve(ctx context.Context, strat *strategy.Strategy, maxVariants, perCallLimit int) ([]RawResult, error) {
	if perCallLimit <= 0 {
		perCallLimit = 10
	}
	if maxVariants <= 0 || maxVariants > len(strat.Variants) {
		maxVariants = len(strat.Variants)
	}
	target := perCallLimit * 2

	seen := make(map[string]struct{})
	pool := make([]RawResult, 0, target)

	for i, variant := range strat.Variants[:maxVariants] {
		req := BackendRequest{
			Query:             variant.Text,
			SourceCategories:  []string{"web", "news"},
			ResultLimit:       perCallLimit,
			RecencyFilter:     recencyFilter(variant.Window),
			ContentMaxAgeDays: maxAgeDays(variant.Window),
			ContentCategories: contentCategories(variant.Text),
			PreferredDomains:  strat.PreferredDomains,
			ExcludedDomains:   strat.ExcludedDomains,
		}

		results, err := r.backend.Search(ctx, req)
		if err != nil {
			if i == 0 && len(pool) == 0 {
				if ctx.Err() != nil {
					return nil, apperrors.NewSearchTimeoutError(variant.Text)
				}
				return nil, apperrors.NewBackendUnavailableError(err)
			}
			r.logger.Warn("variant retrieval failed, continuing", map[string]interface{}{
				"variant": variant.Text,
				"error":   err.Error(),
			})
			continue
		}

		for _, res := range results {
			if res.URL == "" {
				continue
			}
			// The exclusion list holds even when the backend ignores the hint.
			if matchesDomain(res.URL, strat.ExcludedDomains) {
				continue
			}
			if _, dup := seen[res.URL]; dup {
				continue
			}
			seen[res.URL] = struct{}{}
			pool = append(pool, RawResult{
				URL:      res.URL,
				Content:  res.Content,
				Category: res.Category,
				Variant:  variant,
			})
		}

		if len(pool) >= target {
			break
		}
	}

	r.logger.Debug("retrieval pool assembled", map[string]interface{}{
		"variantsAttempted": maxVariants,
		"pooled":            len(pool),
	})

	return pool, nil
}
