// internal/search/orgcontext/profile.go
package orgcontext

import (
	"strings"
	"time"
)

// Profile is the cached reference data for one organization, used to bias
// and rewrite queries. Read-only to the search pipeline.
type Profile struct {
	OrganizationID      string    `json:"organizationId"`
	Name                string    `json:"name"`
	Industry            string    `json:"industry"`
	SubIndustry         string    `json:"subIndustry,omitempty"`
	DirectCompetitors   []string  `json:"directCompetitors,omitempty"`
	IndirectCompetitors []string  `json:"indirectCompetitors,omitempty"`
	EmergingCompetitors []string  `json:"emergingCompetitors,omitempty"`
	Keywords            []string  `json:"keywords,omitempty"`
	TrustedDomains      []string  `json:"trustedDomains,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// industryEntry is one row of the static name-substring fallback table.
type industryEntry struct {
	Substrings  []string
	Industry    string
	SubIndustry string
	Competitors []string
}

// industryTable is evaluated in order against the lowercased org name.
// The last entry is the generic technology default.
var industryTable = []industryEntry{
	{
		Substrings:  []string{"ai", "intelligen", "neural", "cognitive"},
		Industry:    "technology",
		SubIndustry: "artificial intelligence",
		Competitors: []string{"OpenAI", "Anthropic", "Google DeepMind", "Meta AI", "Mistral"},
	},
	{
		Substrings:  []string{"bank", "capital", "financ", "invest", "pay"},
		Industry:    "financial services",
		Competitors: []string{"JPMorgan", "Goldman Sachs", "Stripe", "Block"},
	},
	{
		Substrings:  []string{"health", "pharma", "bio", "med"},
		Industry:    "healthcare",
		Competitors: []string{"Pfizer", "Johnson & Johnson", "UnitedHealth", "Moderna"},
	},
	{
		Substrings:  []string{"shop", "retail", "commerce", "store"},
		Industry:    "retail",
		Competitors: []string{"Amazon", "Shopify", "Walmart", "Target"},
	},
	{
		Substrings:  []string{"media", "press", "news", "broadcast"},
		Industry:    "media",
		Competitors: []string{"Reuters", "Bloomberg", "Axios", "The Information"},
	},
}

var defaultIndustry = industryEntry{
	Industry:    "technology",
	Competitors: []string{"Microsoft", "Google", "Amazon", "Apple"},
}

// genericKeywords apply to every synthesized profile.
var genericKeywords = []string{
	"announcement", "partnership", "funding", "acquisition", "product launch",
}

// aiKeywords are added when the industry resolves to AI.
var aiKeywords = []string{
	"machine learning", "large language model", "foundation model", "AI safety",
}

// tier1Domains are the baseline trusted business/tech sources.
var tier1Domains = []string{
	"reuters.com", "bloomberg.com", "wsj.com", "ft.com",
	"techcrunch.com", "theverge.com", "cnbc.com", "axios.com",
}

// industryDomains extend the tier-1 list per industry.
var industryDomains = map[string][]string{
	"financial services": {"americanbanker.com", "finextra.com"},
	"healthcare":         {"statnews.com", "fiercebiotech.com"},
	"retail":             {"retaildive.com", "modernretail.co"},
	"media":              {"niemanlab.org", "digiday.com"},
	"technology":         {"arstechnica.com", "wired.com"},
}

// SynthesizeProfile builds a lightweight fallback profile from the static
// tables. It never triggers a discovery crawl.
func SynthesizeProfile(orgID, name string) *Profile {
	entry := lookupIndustry(name)

	keywords := make([]string, 0, len(genericKeywords)+len(aiKeywords)+1)
	if name != "" {
		keywords = append(keywords, name)
	}
	keywords = append(keywords, genericKeywords...)
	if entry.SubIndustry == "artificial intelligence" {
		keywords = append(keywords, aiKeywords...)
	}

	domains := append([]string(nil), tier1Domains...)
	if extra, ok := industryDomains[entry.Industry]; ok {
		domains = append(domains, extra...)
	}

	return &Profile{
		OrganizationID:    orgID,
		Name:              name,
		Industry:          entry.Industry,
		SubIndustry:       entry.SubIndustry,
		DirectCompetitors: append([]string(nil), entry.Competitors...),
		Keywords:          keywords,
		TrustedDomains:    domains,
		UpdatedAt:         time.Now().UTC(),
	}
}

func lookupIndustry(name string) industryEntry {
	lower := strings.ToLower(name)
	for _, entry := range industryTable {
		for _, sub := range entry.Substrings {
			if strings.Contains(lower, sub) {
				return entry
			}
		}
	}
	return defaultIndustry
}
