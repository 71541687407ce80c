// internal/search/scoring/extract.go
package scoring

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	markdownHeadingPattern = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)

	// Lines that are site chrome rather than content.
	junkTitlePattern = regexp.MustCompile(`(?i)^(home|menu|navigation|search|subscribe|sign in|log ?in|cookie|accept|404|page not found|access denied|just a moment|skip to)`)

	boilerplatePattern = regexp.MustCompile(`(?i)(cookie|subscribe|newsletter|sign up|advertis|all rights reserved|privacy policy|terms of (use|service))`)

	urlDatePattern     = regexp.MustCompile(`/(20\d{2})/(\d{1,2})(?:/(\d{1,2}))?`)
	isoDatePattern     = regexp.MustCompile(`\b(20\d{2})-(\d{2})-(\d{2})\b`)
	markdownCharsTrim  = "#*_>` \t"
	wordSplitPattern   = regexp.MustCompile(`\s+`)
)

// extractTitle picks the cleanest available title: a markdown heading, then
// the first well-formed non-navigational line, then a slug derived from the
// URL path.
func extractTitle(content, rawURL string) string {
	if m := markdownHeadingPattern.FindStringSubmatch(content); m != nil {
		if t := cleanLine(m[1]); isWellFormedTitle(t) {
			return t
		}
	}

	for _, line := range strings.Split(content, "\n") {
		t := cleanLine(line)
		if isWellFormedTitle(t) {
			return t
		}
	}

	return titleFromURL(rawURL)
}

func cleanLine(line string) string {
	t := strings.Trim(strings.TrimSpace(line), markdownCharsTrim)
	t = strings.TrimSpace(t)
	return truncate(t, 120)
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

func isWellFormedTitle(t string) bool {
	if len(t) < 15 || junkTitlePattern.MatchString(t) {
		return false
	}
	// Titles are prose, not URLs or pipes of nav links.
	if strings.HasPrefix(t, "http") || strings.Count(t, "|") > 1 {
		return false
	}
	return strings.Count(t, " ") >= 1
}

func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return rawURL
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	slug := segments[len(segments)-1]
	slug = strings.TrimSuffix(slug, ".html")
	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	if slug == "" {
		return rawURL
	}
	return strings.Title(slug)
}

// extractDescription returns the first substantial non-boilerplate paragraph.
func extractDescription(content, title string) string {
	for _, para := range strings.Split(content, "\n\n") {
		p := strings.TrimSpace(strings.Trim(para, markdownCharsTrim))
		p = wordSplitPattern.ReplaceAllString(p, " ")
		if len(p) < 50 || p == title {
			continue
		}
		if boilerplatePattern.MatchString(p) || strings.HasPrefix(p, "http") {
			continue
		}
		return truncate(p, 300)
	}
	return ""
}

// extractPublishDate looks for a date in the URL path first, then an ISO
// date in the content. Returns nil when neither is present or parseable.
func extractPublishDate(rawURL, content string) *time.Time {
	if m := urlDatePattern.FindStringSubmatch(rawURL); m != nil {
		if t := buildDate(m[1], m[2], m[3]); t != nil {
			return t
		}
	}
	if m := isoDatePattern.FindStringSubmatch(content); m != nil {
		if t := buildDate(m[1], m[2], m[3]); t != nil {
			return t
		}
	}
	return nil
}

func buildDate(year, month, day string) *time.Time {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d := 1
	if day != "" {
		d, _ = strconv.Atoi(day)
	}
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return nil
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.After(time.Now().UTC().Add(24 * time.Hour)) {
		return nil
	}
	return &t
}

// urlHasRecentDate reports whether the URL path carries a current- or
// prior-year date marker.
func urlHasRecentDate(rawURL string, now time.Time) bool {
	m := urlDatePattern.FindStringSubmatch(rawURL)
	if m == nil {
		return false
	}
	y, _ := strconv.Atoi(m[1])
	return y == now.Year() || y == now.Year()-1
}
