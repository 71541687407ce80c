// internal/search/summary/summary.go
package summary

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"intelligence-workers/internal/search/scoring"
	"intelligence-workers/internal/search/strategy"
)

// NoResultsSummary is the fixed message returned when an episode found
// nothing relevant.
const NoResultsSummary = "No relevant results found for this search. Try broadening the query or removing time constraints."

const (
	topSourceCount   = 3
	bulletCount      = 3
	descriptionLimit = 160
)

// DateRange bounds the publish dates observed across the result set.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Insights is the structured companion to the prose summary.
type Insights struct {
	TopSources  []string   `json:"topSources"`
	KeyEntities []string   `json:"keyEntities"`
	DateRange   *DateRange `json:"dateRange,omitempty"`
	Themes      []string   `json:"themes"`
	Sentiment   string     `json:"sentiment"`
}

// themeRules is the ordered detection table. Every rule is matched against
// the title+description of every result; all matching themes are collected.
var themeRules = []struct {
	Theme   string
	Pattern *regexp.Regexp
}{
	{"regulation & policy", regexp.MustCompile(`(?i)\b(regulation|regulatory|policy|compliance|antitrust|legislation|lawsuit|ruling|ban(ned)?)\b`)},
	{"technical issues", regexp.MustCompile(`(?i)\b(outage|downtime|vulnerabilit(y|ies)|breach|bug|incident|security flaw|exploit)\b`)},
	{"business & finance", regexp.MustCompile(`(?i)\b(revenue|earnings|funding|investment|acquisition|merger|ipo|valuation|layoffs?)\b`)},
	{"product updates", regexp.MustCompile(`(?i)\b(launch(es|ed)?|release[sd]?|update[sd]?|new version|feature[s]?|rollout|announc(es|ed|ement))\b`)},
	{"research", regexp.MustCompile(`(?i)\b(research|study|paper|benchmark|findings|experiment|breakthrough)\b`)},
	{"competition", regexp.MustCompile(`(?i)\b(competitor[s]?|rival[s]?|versus|market share|compet(ing|ition|itive))\b`)},
}

var (
	positivePattern = regexp.MustCompile(`(?i)\b(growth|success|record|breakthrough|gains?|surge[sd]?|strong|wins?|milestone|expand(s|ed|ing)?)\b`)
	negativePattern = regexp.MustCompile(`(?i)\b(lawsuit|breach|outage|layoffs?|decline[sd]?|losses?|fail(s|ed|ure)?|drops?|scandal|fines?[sd]?)\b`)
)

// Summarize builds the prose summary and the insight bundle for a ranked
// result set. Pure text assembly, no I/O.
func Summarize(results []scoring.ScoredResult, originalQuery string) (string, Insights) {
	if len(results) == 0 {
		return NoResultsSummary, Insights{
			TopSources:  []string{},
			KeyEntities: []string{},
			Themes:      []string{},
			Sentiment:   "neutral",
		}
	}

	insights := Insights{
		TopSources:  topSources(results),
		KeyEntities: keyEntities(results),
		DateRange:   dateRange(results),
		Themes:      detectThemes(results),
		Sentiment:   assessSentiment(results),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant results for %q.\n\n", len(results), originalQuery)

	top := bulletCount
	if top > len(results) {
		top = len(results)
	}
	for i := 0; i < top; i++ {
		r := results[i]
		fmt.Fprintf(&b, "- %q (%s)", r.Title, sourceName(r.URL))
		if r.Description != "" {
			desc := r.Description
			if len(desc) > descriptionLimit {
				desc = truncate(desc, descriptionLimit) + "..."
			}
			fmt.Fprintf(&b, ": %s", desc)
		}
		b.WriteString("\n")
	}

	if len(insights.Themes) > 1 {
		fmt.Fprintf(&b, "\nRecurring themes: %s.", strings.Join(insights.Themes, ", "))
	}

	return b.String(), insights
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func sourceName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// topSources returns the most frequent source domains, ties broken by
// first appearance.
func topSources(results []scoring.ScoredResult) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range results {
		name := sourceName(r.URL)
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > topSourceCount {
		order = order[:topSourceCount]
	}
	return order
}

// keyEntities collects capitalized name spans across result titles.
func keyEntities(results []scoring.ScoredResult) []string {
	seen := make(map[string]struct{})
	entities := make([]string, 0)
	for _, r := range results {
		for _, e := range strategy.DetectEntities(r.Title) {
			key := strings.ToLower(e)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			entities = append(entities, e)
		}
	}
	if len(entities) > 5 {
		entities = entities[:5]
	}
	return entities
}

func dateRange(results []scoring.ScoredResult) *DateRange {
	var min, max *time.Time
	for _, r := range results {
		if r.PublishedAt == nil {
			continue
		}
		t := *r.PublishedAt
		if min == nil || t.Before(*min) {
			min = &t
		}
		if max == nil || t.After(*max) {
			max = &t
		}
	}
	if min == nil {
		return nil
	}
	return &DateRange{From: *min, To: *max}
}

func detectThemes(results []scoring.ScoredResult) []string {
	themes := make([]string, 0)
	for _, rule := range themeRules {
		for _, r := range results {
			if rule.Pattern.MatchString(r.Title + " " + r.Description) {
				themes = append(themes, rule.Theme)
				break
			}
		}
	}
	return themes
}

// assessSentiment is a coarse lexicon vote across titles and descriptions.
func assessSentiment(results []scoring.ScoredResult) string {
	positive, negative := 0, 0
	for _, r := range results {
		text := r.Title + " " + r.Description
		positive += len(positivePattern.FindAllString(text, -1))
		negative += len(negativePattern.FindAllString(text, -1))
	}
	switch {
	case positive > negative*2:
		return "positive"
	case negative > positive*2:
		return "negative"
	default:
		return "neutral"
	}
}
