// internal/search/strategy/temporal.go
package strategy

import "regexp"

// Window is a coarse recency code biasing or restricting retrieval.
type Window string

const (
	WindowHour   Window = "hour"
	WindowDay    Window = "day"
	Window3Day   Window = "3d"
	WindowWeek   Window = "week"
	Window2Week  Window = "2w"
	WindowMonth  Window = "month"
	Window3Month Window = "3mo"
	Window6Month Window = "6mo"
	WindowYear   Window = "year"
)

// DefaultWindow applies when no temporal phrase or keyword matches.
const DefaultWindow = WindowMonth

// windowRule maps a query pattern to a temporal window. Rules are evaluated
// in order, first match wins.
type windowRule struct {
	pattern *regexp.Regexp
	window  Window
}

// explicitWindowRules match explicit temporal phrases. They always beat the
// keyword heuristics below.
var explicitWindowRules = []windowRule{
	{regexp.MustCompile(`(?i)\b(past|last|within the) hour\b`), WindowHour},
	{regexp.MustCompile(`(?i)\btoday\b|\b(past|last) 24 hours\b`), WindowDay},
	{regexp.MustCompile(`(?i)\b(past|last) (few|3|three) days\b`), Window3Day},
	{regexp.MustCompile(`(?i)\b(this|past|last) week\b|\b(past|last) 7 days\b`), WindowWeek},
	{regexp.MustCompile(`(?i)\b(past|last) (two|2) weeks\b|\bfortnight\b`), Window2Week},
	{regexp.MustCompile(`(?i)\b(this|past|last) month\b|\b(past|last) 30 days\b`), WindowMonth},
	{regexp.MustCompile(`(?i)\b(past|last) (three|3) months\b|\b(this|past|last) quarter\b`), Window3Month},
	{regexp.MustCompile(`(?i)\b(past|last) (six|6) months\b|\bhalf year\b`), Window6Month},
	{regexp.MustCompile(`(?i)\b(this|past|last) year\b|\b(past|last) 12 months\b`), WindowYear},
}

// keywordWindowRules are weaker intent-derived heuristics.
var keywordWindowRules = []windowRule{
	{regexp.MustCompile(`(?i)\bbreaking\b`), WindowHour},
	{regexp.MustCompile(`(?i)\brecent(ly)?\b`), Window3Month},
	{regexp.MustCompile(`(?i)\b(latest|launch|news|update[sd]?|announce[sd]?|announcement)\b`), WindowMonth},
}

// InferWindow resolves the temporal window for a query. Pure and
// deterministic: explicit phrases beat keyword heuristics, first matching
// rule wins, exactly one code is returned.
func InferWindow(query string) Window {
	for _, rule := range explicitWindowRules {
		if rule.pattern.MatchString(query) {
			return rule.window
		}
	}
	for _, rule := range keywordWindowRules {
		if rule.pattern.MatchString(query) {
			return rule.window
		}
	}
	return DefaultWindow
}
