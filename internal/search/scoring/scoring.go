// internal/search/scoring/scoring.go
package scoring

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"intelligence-workers/internal/search/retriever"
	"intelligence-workers/internal/search/strategy"
)

const (
	// AcceptanceThreshold is the fixed minimum score for a result to
	// survive filtering.
	AcceptanceThreshold = 0.15

	// MaxResults caps the ranked output.
	MaxResults = 20

	// Titles this short are navigation fragments, not headlines.
	maxJunkTitleLength = 10
)

// Quality is a coarse content-quality tier.
type Quality string

const (
	QualityPoor   Quality = "poor"
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ScoredResult is a merged retrieval hit with extracted metadata and a
// normalized relevance score.
type ScoredResult struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Category    string     `json:"category,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Score       float64    `json:"score"`
	Quality     Quality    `json:"quality"`
	Enriched    bool       `json:"enriched"`
}

// authorityDomains is the fixed high-authority list used for the domain
// signal. Bare registrable domains; subdomains match by suffix.
var authorityDomains = []string{
	"reuters.com", "bloomberg.com", "wsj.com", "ft.com", "nytimes.com",
	"techcrunch.com", "theverge.com", "wired.com", "arstechnica.com",
	"cnbc.com", "forbes.com", "axios.com", "businesswire.com", "prnewswire.com",
}

var newsIntentPattern = regexp.MustCompile(`(?i)\b(news|latest|breaking|update[sd]?|announc(e|es|ed|ement)|recent|headlines)\b`)

// Score ranks raw retrieval hits against the original query. Pure and
// deterministic: no I/O, no randomness, stable order for equal scores.
// Malformed hits (missing URL or content) are dropped silently.
func Score(raw []retriever.RawResult, originalQuery string, strat *strategy.Strategy) []ScoredResult {
	queryLower := strings.ToLower(strings.TrimSpace(originalQuery))
	terms := queryTerms(queryLower)
	newsIntent := newsIntentPattern.MatchString(originalQuery)
	now := time.Now().UTC()

	scored := make([]ScoredResult, 0, len(raw))
	for _, r := range raw {
		if r.URL == "" || strings.TrimSpace(r.Content) == "" {
			continue
		}

		title := extractTitle(r.Content, r.URL)
		description := extractDescription(r.Content, title)
		result := ScoredResult{
			URL:         r.URL,
			Title:       title,
			Description: description,
			Content:     r.Content,
			Category:    r.Category,
			PublishedAt: extractPublishDate(r.URL, r.Content),
		}

		result.Score = scoreResult(result, queryLower, terms, newsIntent, strat, now)
		result.Quality = assessQuality(result)

		if !accept(result) {
			continue
		}
		scored = append(scored, result)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}
	return scored
}

func scoreResult(r ScoredResult, queryLower string, terms []string, newsIntent bool, strat *strategy.Strategy, now time.Time) float64 {
	titleLower := strings.ToLower(r.Title)
	haystack := titleLower + " " + strings.ToLower(r.Description) + " " + strings.ToLower(r.Content)

	score := 0.0

	if queryLower != "" && strings.Contains(haystack, queryLower) {
		score += 0.5
	}

	if len(terms) > 0 {
		found := 0
		inTitle := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				found++
			}
			if strings.Contains(titleLower, term) {
				inTitle++
			}
		}
		score += 0.3 * float64(found) / float64(len(terms))
		score += 0.15 * float64(inTitle)
	}

	if isAuthorityDomain(r.URL) {
		score += 0.2
	}

	if newsIntent && r.Category == "news" {
		score += 0.15
	}

	if urlHasRecentDate(r.URL, now) {
		score += 0.15
	}

	words := len(wordSplitPattern.Split(strings.TrimSpace(r.Content), -1))
	if words >= 200 && words <= 5000 {
		score += 0.05
	}

	// Penalty, not exclusion: a missing must-include term halves the score.
	for _, term := range strat.RequiredTerms {
		if !strings.Contains(haystack, strings.ToLower(term)) {
			score *= 0.5
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// queryTerms splits the query into lowercase terms longer than two chars.
func queryTerms(queryLower string) []string {
	fields := strings.FieldsFunc(queryLower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

func isAuthorityDomain(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range authorityDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// assessQuality tiers a result by word count, structure, and title shape.
func assessQuality(r ScoredResult) Quality {
	words := len(wordSplitPattern.Split(strings.TrimSpace(r.Content), -1))
	wellFormedTitle := isWellFormedTitle(r.Title)
	structured := markdownHeadingPattern.MatchString(r.Content) || strings.Contains(r.Content, "\n\n")

	switch {
	case words < 50 || !wellFormedTitle:
		return QualityPoor
	case words < 150:
		return QualityLow
	case words < 400 || !structured:
		return QualityMedium
	default:
		return QualityHigh
	}
}

func accept(r ScoredResult) bool {
	if len(r.Title) <= maxJunkTitleLength {
		return false
	}
	if r.Score <= AcceptanceThreshold {
		return false
	}
	if junkTitlePattern.MatchString(r.Title) {
		return false
	}
	if r.Quality == QualityPoor {
		return false
	}
	return true
}
