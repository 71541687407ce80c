// internal/search/strategy/strategy.go
package strategy

import (
	"fmt"
	"regexp"
	"strings"

	"intelligence-workers/internal/search/orgcontext"
)

const (
	// MaxVariants bounds how many reformulations the builder emits.
	MaxVariants = 8

	// MaxPreferredDomains caps profile-supplied trusted domains.
	MaxPreferredDomains = 8

	defaultVariantText = "latest news"
)

// Variant is one reformulation of the user's query targeting a single
// facet of intent. Transient, never persisted.
type Variant struct {
	Text   string `json:"text"`
	Intent string `json:"intent,omitempty"`
	Window Window `json:"window"`
}

// Strategy is the full retrieval plan for one episode.
type Strategy struct {
	Variants         []Variant `json:"variants"`
	TemporalWindow   Window    `json:"temporalWindow"`
	RequiredTerms    []string  `json:"requiredTerms,omitempty"`
	PreferredDomains []string  `json:"preferredDomains,omitempty"`
	ExcludedDomains  []string  `json:"excludedDomains"`
}

// intentRule classifies a query facet and carries the vocabulary used to
// build templated variants for it. Evaluated in order.
type intentRule struct {
	Name    string
	Pattern *regexp.Regexp
}

var intentRules = []intentRule{
	{"partnership", regexp.MustCompile(`(?i)\b(partnership|collaborat(e|es|ed|ion|ing)|partner(s|ing|ed)?|alliance|joint venture|team(s|ed|ing)? up)\b`)},
	{"competition", regexp.MustCompile(`(?i)\b(versus|vs\.?|competitor(s)?|competition|rival(s|ry)?|compar(e|es|ed|ison))\b`)},
	{"launch", regexp.MustCompile(`(?i)\b(launch(es|ed|ing)?|release[sd]?|announc(e|es|ed|ing|ement)|unveil(s|ed|ing)?|debut(s|ed)?|introduc(e|es|ed|ing))\b`)},
	{"funding", regexp.MustCompile(`(?i)\b(funding|investment|invest(s|ed|or|ors)?|rais(e|es|ed|ing)|seed round|series [a-e]\b|venture capital|valuation)\b`)},
	{"news", regexp.MustCompile(`(?i)\b(news|latest|update[s]?|recent|developments|headlines)\b`)},
}

var (
	// Capitalized multi-word spans are candidate entity names.
	entityPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9&'.-]*(?:\s+[A-Z][A-Za-z0-9&'.-]*)+\b`)

	// "Product 2" style names get dedicated version-launch variants.
	versionPattern = regexp.MustCompile(`\b[A-Z][A-Za-z]+(?:\s+[A-Z]?[a-z]+)?\s+\d+(?:\.\d+)*\b`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// topicDomainRules map topic keywords to a built-in preferred domain list,
// used when the profile supplies no trusted domains. First match wins.
var topicDomainRules = []struct {
	Pattern *regexp.Regexp
	Domains []string
}{
	{
		regexp.MustCompile(`(?i)\b(regulation|regulatory|policy|compliance|antitrust|legislation|lawsuit)\b`),
		[]string{"reuters.com", "bloomberg.com", "ft.com", "politico.com", "law360.com"},
	},
	{
		regexp.MustCompile(`(?i)\b(partnership|collaboration|alliance|joint venture)\b`),
		[]string{"businesswire.com", "prnewswire.com", "techcrunch.com", "reuters.com"},
	},
}

// noiseDomains are excluded from every episode.
var noiseDomains = []string{
	"pinterest.com",
	"quora.com",
	"reddit.com",
	"facebook.com",
	"instagram.com",
	"tiktok.com",
}

// BuildStrategy turns a raw query and an optional organization profile into
// an ordered retrieval plan. It never fails: an empty query yields a single
// default variant and the default temporal window.
func BuildStrategy(query string, profile *orgcontext.Profile) *Strategy {
	trimmed := strings.TrimSpace(query)

	strat := &Strategy{
		TemporalWindow:  InferWindow(trimmed),
		ExcludedDomains: append([]string(nil), noiseDomains...),
	}

	if trimmed == "" {
		strat.Variants = []Variant{{Text: defaultVariantText, Intent: "news", Window: strat.TemporalWindow}}
		return strat
	}

	entities := DetectEntities(trimmed)
	if len(entities) > 0 {
		strat.RequiredTerms = []string{strings.ToLower(entities[0])}
	}

	texts := []variantCandidate{{trimmed, "original"}}
	texts = append(texts, intentVariants(trimmed, entities)...)
	texts = append(texts, versionVariants(trimmed)...)

	seen := make(map[string]bool)
	for _, c := range texts {
		key := strings.ToLower(whitespacePattern.ReplaceAllString(c.text, " "))
		if seen[key] {
			continue
		}
		seen[key] = true
		strat.Variants = append(strat.Variants, Variant{
			Text:   c.text,
			Intent: c.intent,
			Window: strat.TemporalWindow,
		})
		if len(strat.Variants) >= MaxVariants {
			break
		}
	}

	strat.PreferredDomains = preferredDomains(trimmed, profile)
	return strat
}

type variantCandidate struct {
	text   string
	intent string
}

// DetectEntities returns up to two capitalized multi-word spans from the
// query, in order of appearance.
func DetectEntities(query string) []string {
	matches := entityPattern.FindAllString(query, -1)
	var entities []string
	for _, m := range matches {
		// Spans that are pure intent vocabulary are not entities.
		if isIntentOnly(m) {
			continue
		}
		entities = append(entities, m)
		if len(entities) == 2 {
			break
		}
	}
	return entities
}

func isIntentOnly(span string) bool {
	for _, w := range strings.Fields(span) {
		matched := false
		for _, rule := range intentRules {
			if rule.Pattern.MatchString(w) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// intentVariants builds templated reformulations for every intent class the
// query matches, combined with up to two detected entities.
func intentVariants(query string, entities []string) []variantCandidate {
	var out []variantCandidate

	for _, rule := range intentRules {
		if !rule.Pattern.MatchString(query) {
			continue
		}

		switch rule.Name {
		case "partnership":
			if len(entities) >= 2 {
				out = append(out,
					variantCandidate{fmt.Sprintf("%q %q partnership", entities[0], entities[1]), rule.Name},
					variantCandidate{fmt.Sprintf("%q %q collaboration announcement", entities[0], entities[1]), rule.Name},
				)
			} else if len(entities) == 1 {
				out = append(out,
					variantCandidate{fmt.Sprintf("%q partnership announcement", entities[0]), rule.Name},
					variantCandidate{fmt.Sprintf("%q strategic alliance", entities[0]), rule.Name},
				)
			} else {
				out = append(out, variantCandidate{query + " announcement", rule.Name})
			}
		case "competition":
			if len(entities) >= 2 {
				out = append(out,
					variantCandidate{fmt.Sprintf("%q vs %q", entities[0], entities[1]), rule.Name},
					variantCandidate{fmt.Sprintf("%q %q comparison", entities[0], entities[1]), rule.Name},
				)
			} else if len(entities) == 1 {
				out = append(out,
					variantCandidate{fmt.Sprintf("%q competitors alternatives", entities[0]), rule.Name},
					variantCandidate{fmt.Sprintf("%q market rivals", entities[0]), rule.Name},
				)
			}
		case "launch":
			if len(entities) >= 1 {
				out = append(out,
					variantCandidate{fmt.Sprintf("%q launch announcement", entities[0]), rule.Name},
					variantCandidate{fmt.Sprintf("%q product release", entities[0]), rule.Name},
				)
			}
		case "funding":
			if len(entities) >= 1 {
				out = append(out,
					variantCandidate{fmt.Sprintf("%q funding round", entities[0]), rule.Name},
					variantCandidate{fmt.Sprintf("%q investment raised", entities[0]), rule.Name},
				)
			}
		case "news":
			if len(entities) >= 1 {
				out = append(out,
					variantCandidate{fmt.Sprintf("%q latest news", entities[0]), rule.Name},
					variantCandidate{fmt.Sprintf("%q recent developments", entities[0]), rule.Name},
				)
			} else {
				out = append(out, variantCandidate{query + " developments", rule.Name})
			}
		}
	}

	return out
}

// versionVariants handles numeric product names ("Model 4", "Widget 2.1").
func versionVariants(query string) []variantCandidate {
	m := versionPattern.FindString(query)
	if m == "" {
		return nil
	}
	return []variantCandidate{
		{fmt.Sprintf("%q launch", m), "launch"},
		{fmt.Sprintf("%q release date", m), "launch"},
		{m + " announcement", "launch"},
	}
}

// preferredDomains resolves domain targeting: profile trusted domains take
// priority, then built-in topic tables, else unrestricted.
func preferredDomains(query string, profile *orgcontext.Profile) []string {
	if profile != nil && len(profile.TrustedDomains) > 0 {
		domains := profile.TrustedDomains
		if len(domains) > MaxPreferredDomains {
			domains = domains[:MaxPreferredDomains]
		}
		return append([]string(nil), domains...)
	}

	for _, rule := range topicDomainRules {
		if rule.Pattern.MatchString(query) {
			return append([]string(nil), rule.Domains...)
		}
	}

	return nil
}
