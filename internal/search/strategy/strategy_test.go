// internal/search/strategy/strategy_test.go
package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"intelligence-workers/internal/search/orgcontext"
)

func TestInferWindow(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Window
	}{
		{"breaking keyword", "breaking news about Acme Corp", WindowHour},
		{"explicit today", "Acme Corp announcements today", WindowDay},
		{"explicit last week", "Acme Corp news last week", WindowWeek},
		{"explicit this quarter", "revenue results this quarter", Window3Month},
		{"explicit last year", "acquisitions last year", WindowYear},
		{"explicit beats keyword", "latest updates from this week", WindowWeek},
		{"recent keyword", "recent developments in robotics", Window3Month},
		{"latest keyword", "latest robotics products", WindowMonth},
		{"no temporal signal", "quantum computing hardware", DefaultWindow},
		{"empty query", "", DefaultWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferWindow(tt.query))
		})
	}
}

func TestInferWindowDeterministic(t *testing.T) {
	query := "breaking news this week about Acme Corp"
	first := InferWindow(query)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, InferWindow(query))
	}
}

func TestBuildStrategyVariantZeroIsOriginal(t *testing.T) {
	queries := []string{
		"Acme Corp partnership announcement",
		"  padded query  ",
		"lowercase plain query",
	}

	for _, q := range queries {
		strat := BuildStrategy(q, nil)
		assert.GreaterOrEqual(t, len(strat.Variants), 1)
		assert.Equal(t, strings.TrimSpace(q), strat.Variants[0].Text)
	}
}

func TestBuildStrategyEmptyQuery(t *testing.T) {
	strat := BuildStrategy("   ", nil)

	assert.Len(t, strat.Variants, 1)
	assert.Equal(t, "latest news", strat.Variants[0].Text)
	assert.Equal(t, DefaultWindow, strat.TemporalWindow)
	assert.NotEmpty(t, strat.ExcludedDomains)
}

func TestBuildStrategyPartnershipScenario(t *testing.T) {
	strat := BuildStrategy("Acme Corp partnership announcement", nil)

	assert.Equal(t, WindowMonth, strat.TemporalWindow)

	var quoted bool
	for _, v := range strat.Variants {
		if strings.Contains(v.Text, `"Acme Corp"`) &&
			(strings.Contains(v.Text, "partnership") || strings.Contains(v.Text, "alliance")) {
			quoted = true
			break
		}
	}
	assert.True(t, quoted, "expected a variant quoting the entity with partnership vocabulary, got %v", strat.Variants)
}

func TestBuildStrategyVariantsDeduplicated(t *testing.T) {
	strat := BuildStrategy("Acme Corp latest news", nil)

	seen := make(map[string]bool)
	for _, v := range strat.Variants {
		key := strings.ToLower(v.Text)
		assert.False(t, seen[key], "duplicate variant %q", v.Text)
		seen[key] = true
	}
	assert.LessOrEqual(t, len(strat.Variants), MaxVariants)
}

func TestBuildStrategyRequiredTerms(t *testing.T) {
	strat := BuildStrategy("Acme Corp funding round", nil)
	assert.Equal(t, []string{"acme corp"}, strat.RequiredTerms)

	strat = BuildStrategy("generic query with no entities", nil)
	assert.Empty(t, strat.RequiredTerms)
}

func TestBuildStrategyVersionVariants(t *testing.T) {
	strat := BuildStrategy("Widget 2 release", nil)

	var versionLaunch bool
	for _, v := range strat.Variants {
		if strings.Contains(v.Text, `"Widget 2"`) && strings.Contains(v.Text, "launch") {
			versionLaunch = true
			break
		}
	}
	assert.True(t, versionLaunch, "expected version launch variant, got %v", strat.Variants)
}

func TestBuildStrategyProfileDomainsTakePriority(t *testing.T) {
	profile := &orgcontext.Profile{
		Name:           "OpenAI",
		TrustedDomains: []string{"reuters.com", "theinformation.com"},
	}

	strat := BuildStrategy("regulation news", profile)
	assert.Equal(t, []string{"reuters.com", "theinformation.com"}, strat.PreferredDomains)
}

func TestBuildStrategyTopicDomainsWithoutProfile(t *testing.T) {
	strat := BuildStrategy("antitrust regulation ruling", nil)
	assert.Contains(t, strat.PreferredDomains, "reuters.com")

	strat = BuildStrategy("completely neutral topic", nil)
	assert.Empty(t, strat.PreferredDomains)
}

func TestBuildStrategyNoiseDomainsAlwaysExcluded(t *testing.T) {
	for _, q := range []string{"", "Acme Corp news", "anything at all"} {
		strat := BuildStrategy(q, nil)
		assert.Contains(t, strat.ExcludedDomains, "pinterest.com")
		assert.Contains(t, strat.ExcludedDomains, "reddit.com")
	}
}

func TestDetectEntities(t *testing.T) {
	tests := []struct {
		query    string
		expected []string
	}{
		{"Acme Corp partners with Globex Industries", []string{"Acme Corp", "Globex Industries"}},
		{"Acme Corp and Globex Industries and Initech Systems", []string{"Acme Corp", "Globex Industries"}},
		{"no entities here", nil},
		{"Latest News about nothing", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectEntities(tt.query), "query: %s", tt.query)
	}
}
