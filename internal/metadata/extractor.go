// Package metadata recovers preview metadata (title, description, image)
// from raw HTML markup. Matching is regex-based over the raw text; no DOM
// is built, so truncated or malformed pages degrade to nil fields instead
// of failing.
package metadata

import (
	"regexp"
	"strings"
)

// Metadata is the best-effort preview extracted from a page.
// Nil fields mean no usable value was found.
type Metadata struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// minDescriptionLen is the minimum capture length accepted by the lenient
// description patterns. Shorter captures are usually attribute noise.
const minDescriptionLen = 10

// rule is one prioritized extraction pattern. The first capture group
// holds the candidate value.
type rule struct {
	name string
	re   *regexp.Regexp
}

// Rule tables, evaluated in order; the first non-empty capture wins.
// Patterns are case-insensitive and tolerate arbitrary attributes and
// whitespace between the ones they anchor on.
var (
	titleRules = []rule{
		{"og:title", regexp.MustCompile(
			`(?is)<meta\s[^>]*property\s*=\s*["']og:title["'][^>]*content\s*=\s*["']([^"']+)["']`)},
		{"title-tag", regexp.MustCompile(
			`(?is)<title[^>]*>([^<]+)</title>`)},
	}

	descriptionRules = []rule{
		{"og:description", regexp.MustCompile(
			`(?is)<meta\s[^>]*property\s*=\s*["']og:description["'][^>]*content\s*=\s*["']([^"']+)["']`)},
		{"meta-description", regexp.MustCompile(
			`(?is)<meta\s[^>]*name\s*=\s*["']description["'][^>]*content\s*=\s*["']([^"']+)["']`)},
		// Lenient fallbacks: either attribute order, minimum capture length.
		{"description-lenient", regexp.MustCompile(
			`(?is)<meta\s[^>]*(?:name|property)\s*=\s*["'](?:og:)?description["'][^>]*content\s*=\s*["']([^"']{` +
				minDescriptionLenStr + `,})["']`)},
		{"description-lenient-reversed", regexp.MustCompile(
			`(?is)<meta\s[^>]*content\s*=\s*["']([^"']{` + minDescriptionLenStr +
				`,})["'][^>]*(?:name|property)\s*=\s*["'](?:og:)?description["']`)},
	}

	imageRules = []rule{
		{"og:image", regexp.MustCompile(
			`(?is)<meta\s[^>]*property\s*=\s*["']og:image["'][^>]*content\s*=\s*["']([^"']+)["']`)},
		{"twitter:image", regexp.MustCompile(
			`(?is)<meta\s[^>]*(?:name|property)\s*=\s*["']twitter:image["'][^>]*content\s*=\s*["']([^"']+)["']`)},
	}

	// titleSuffix matches the site-name suffix commonly appended after a
	// "-" or "|" separator ("Article Name - SiteName").
	titleSuffix = regexp.MustCompile(`(?s)\s*[-|].*$`)
)

// minDescriptionLenStr keeps the rule table literal in sync with the constant.
const minDescriptionLenStr = "10"

// Extractor extracts preview metadata from HTML markup.
type Extractor struct{}

// NewExtractor creates a new metadata extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract resolves each field independently through its rule chain.
// It never fails: pages with no recognizable metadata yield all-nil fields.
// Output is deterministic for identical input.
func (e *Extractor) Extract(html string) Metadata {
	return Metadata{
		Title:       extractTitle(html),
		Description: firstMatch(descriptionRules, html),
		Image:       firstMatch(imageRules, html),
	}
}

// extractTitle runs the title chain and strips the site-name suffix from
// each candidate. A candidate that is empty after stripping does not match.
func extractTitle(html string) *string {
	for _, r := range titleRules {
		m := r.re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(titleSuffix.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		if title != "" {
			return &title
		}
	}
	return nil
}

// firstMatch returns the first rule's non-empty trimmed capture, or nil.
func firstMatch(rules []rule, html string) *string {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		val := strings.TrimSpace(m[1])
		if val != "" {
			return &val
		}
	}
	return nil
}
