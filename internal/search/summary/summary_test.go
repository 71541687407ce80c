// internal/search/summary/summary_test.go
package summary

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelligence-workers/internal/search/scoring"
)

func result(url, title, description string) scoring.ScoredResult {
	return scoring.ScoredResult{URL: url, Title: title, Description: description}
}

func TestSummarizeZeroResults(t *testing.T) {
	text, insights := Summarize(nil, "anything")

	assert.True(t, strings.HasPrefix(text, "No relevant results found"))
	assert.Empty(t, insights.TopSources)
	assert.Empty(t, insights.Themes)
	assert.Nil(t, insights.DateRange)
	assert.Equal(t, "neutral", insights.Sentiment)
}

func TestSummarizeMentionsCountAndTopTitles(t *testing.T) {
	results := []scoring.ScoredResult{
		result("https://reuters.com/a", "Acme Corp partnership with Globex announced", "The two companies announced a wide-ranging partnership covering logistics and cloud infrastructure."),
		result("https://techcrunch.com/b", "Acme Corp launches new platform", "The launch introduces a new platform aimed at enterprise customers."),
		result("https://reuters.com/c", "Globex responds to partnership news", "Analysts weighed in on the implications for the broader market."),
		result("https://cnbc.com/d", "Market reaction to the deal", "Shares moved on the announcement."),
	}

	text, insights := Summarize(results, "Acme Corp partnership")

	assert.Contains(t, text, "Found 4 relevant results")
	assert.Contains(t, text, `"Acme Corp partnership with Globex announced"`)
	assert.Contains(t, text, "(reuters.com)")
	// Only the top three results get bullets.
	assert.NotContains(t, text, "Market reaction to the deal")

	assert.Equal(t, "reuters.com", insights.TopSources[0])
	assert.LessOrEqual(t, len(insights.TopSources), 3)
}

func TestSummarizeAppendsThemesWhenMultiple(t *testing.T) {
	results := []scoring.ScoredResult{
		result("https://a.example/1", "Regulator opens antitrust review of merger", "The antitrust legislation review covers the proposed acquisition."),
		result("https://a.example/2", "Vendor launches new product release", "The release adds several features requested by customers."),
	}

	text, insights := Summarize(results, "industry roundup")

	require.Greater(t, len(insights.Themes), 1)
	assert.Contains(t, text, "Recurring themes:")
	assert.Contains(t, insights.Themes, "regulation & policy")
	assert.Contains(t, insights.Themes, "product updates")
}

func TestSummarizeSingleThemeOmitsThemeLine(t *testing.T) {
	results := []scoring.ScoredResult{
		result("https://a.example/1", "Research paper presents new benchmark findings", "The study documents benchmark results across workloads."),
	}

	text, insights := Summarize(results, "benchmarks")

	assert.Equal(t, []string{"research"}, insights.Themes)
	assert.NotContains(t, text, "Recurring themes:")
}

func TestSummarizeDateRange(t *testing.T) {
	early := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	results := []scoring.ScoredResult{
		{URL: "https://a.example/1", Title: "First story in the series here", PublishedAt: &late},
		{URL: "https://a.example/2", Title: "Second story in the series here"},
		{URL: "https://a.example/3", Title: "Third story in the series here", PublishedAt: &early},
	}

	_, insights := Summarize(results, "series")

	require.NotNil(t, insights.DateRange)
	assert.Equal(t, early, insights.DateRange.From)
	assert.Equal(t, late, insights.DateRange.To)
}

func TestSummarizeNilDateRangeWithoutDates(t *testing.T) {
	_, insights := Summarize([]scoring.ScoredResult{
		result("https://a.example/1", "Story without any date markers", "Plain description."),
	}, "query")

	assert.Nil(t, insights.DateRange)
}

func TestSummarizeKeyEntities(t *testing.T) {
	results := []scoring.ScoredResult{
		result("https://a.example/1", "Acme Corp partners with Globex Industries", ""),
		result("https://a.example/2", "Acme Corp expands again", ""),
	}

	_, insights := Summarize(results, "query")

	assert.Contains(t, insights.KeyEntities, "Acme Corp")
	assert.Contains(t, insights.KeyEntities, "Globex Industries")
	// Deduplicated across titles.
	count := 0
	for _, e := range insights.KeyEntities {
		if e == "Acme Corp" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSummarizeSentiment(t *testing.T) {
	positive := []scoring.ScoredResult{
		result("https://a.example/1", "Record growth and strong gains reported", "The milestone marks a breakthrough success for the company."),
	}
	negative := []scoring.ScoredResult{
		result("https://a.example/2", "Lawsuit and layoffs follow outage", "Losses mounted after the breach and the decline in usage."),
	}

	_, pi := Summarize(positive, "q")
	_, ni := Summarize(negative, "q")

	assert.Equal(t, "positive", pi.Sentiment)
	assert.Equal(t, "negative", ni.Sentiment)
}

func TestSummarizeTruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("description ", 40)
	results := []scoring.ScoredResult{
		result("https://a.example/1", "A headline long enough to be a title", long),
	}

	text, _ := Summarize(results, "query")
	assert.Contains(t, text, "...")
}

func TestSummarizeTruncationKeepsValidUTF8(t *testing.T) {
	// A two-byte rune straddles the truncation boundary.
	desc := strings.Repeat("x", descriptionLimit-1) + "é" + strings.Repeat("y", 30)
	results := []scoring.ScoredResult{
		result("https://a.example/1", "A headline long enough to be a title", desc),
	}

	text, _ := Summarize(results, "query")

	assert.True(t, utf8.ValidString(text))
	assert.Contains(t, text, strings.Repeat("x", descriptionLimit-1)+"...")
	assert.NotContains(t, text, "é")
}
