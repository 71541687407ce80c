// internal/search/orgcontext/enhance.go
package orgcontext

import (
	"regexp"
	"strings"
)

const maxCompetitorExpansion = 5

var (
	firstPersonPattern = regexp.MustCompile(`(?i)\b(my|our|us|we)\b`)
	competitorPattern  = regexp.MustCompile(`(?i)\bcompetitors?\b`)
	industryNewsIntent = regexp.MustCompile(`(?i)\b(industry|market)\s+(news|trends|landscape|updates?)\b`)
)

// EnhanceQuery rewrites organization-relative phrasing into concrete terms
// the search backend can match:
//
//   - first-person references ("my", "our", "us", "we") become the
//     organization name when the name is not already present
//   - "competitor"/"competitors" expands into an OR-list of the top direct
//     competitors
//   - industry/market news intents get the organization and its competitors
//     prepended so generic queries pull relevant coverage
//
// Returns the query unchanged when no profile is available.
func EnhanceQuery(query string, profile *Profile) string {
	if profile == nil || profile.Name == "" {
		return query
	}

	enhanced := query

	if firstPersonPattern.MatchString(enhanced) &&
		!strings.Contains(strings.ToLower(enhanced), strings.ToLower(profile.Name)) {
		enhanced = firstPersonPattern.ReplaceAllString(enhanced, profile.Name)
	}

	if competitorPattern.MatchString(enhanced) && len(profile.DirectCompetitors) > 0 {
		enhanced = competitorPattern.ReplaceAllString(enhanced, orList(profile.DirectCompetitors))
	}

	if industryNewsIntent.MatchString(enhanced) &&
		!strings.Contains(strings.ToLower(enhanced), strings.ToLower(profile.Name)) {
		names := append([]string{profile.Name}, profile.DirectCompetitors...)
		enhanced = orList(names) + " " + enhanced
	}

	return strings.Join(strings.Fields(enhanced), " ")
}

func orList(names []string) string {
	if len(names) > maxCompetitorExpansion {
		names = names[:maxCompetitorExpansion]
	}
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, `"`+n+`"`)
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}
