package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Extractor finds person-name candidates in free text. The naive
// implementation below is heuristic by design; a statistical or LLM-backed
// extractor can replace it without touching the orchestrator.
type Extractor interface {
	Extract(text string) []string
}

// Detect "Proper Case" multi-word runs and normalize them to stable ids.
var personNameRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z.]+)+)\b`)

var (
	properTokenRe   = regexp.MustCompile(`^[A-Z][a-z]+$`)
	middleInitialRe = regexp.MustCompile(`^[A-Z]\.$`)

	emailRe = regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w{2,}\b`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\-.\s()]{7,}\d`)
)

// Per-token stopwords for obviously non-person phrases.
var stopwords = map[string]bool{
	"The": true, "And": true, "For": true, "With": true, "From": true,
	"Into": true, "Across": true, "Between": true, "Among": true,
	"Project": true, "Graph": true, "Knowledge": true, "Vector": true,
	"Search": true, "Database": true, "Engineer": true, "Senior": true,
	"Staff": true, "Manager": true, "Director": true, "Company": true,
	"Organization": true,
}

// Phrases that are never person names (compared lowercase).
var bannedTerms = map[string]bool{
	"computer science":     true,
	"software engineering": true,
	"data structures":      true,
	"advanced algorithms":  true,
	"network security":     true,
	"machine learning":     true,
	"google cloud":         true,
	"magna cum laude":      true,
	"cum laude":            true,
}

// Degree/field suffixes that disqualify a trailing token.
var bannedSuffixes = map[string]bool{
	"Science": true, "Engineering": true, "Algorithms": true,
	"Structures": true, "Security": true, "Cloud": true,
	"Learning": true, "Laude": true,
}

type NaivePersons struct{}

func NewNaivePersons() *NaivePersons {
	return &NaivePersons{}
}

// Extract returns the distinct plausible person names in text, sorted
// ascending for determinism. When the text carries no contact signal (no
// email or phone anywhere) the filters get stricter, since prose sections
// without a contact block produce most of the false positives.
func (e *NaivePersons) Extract(text string) []string {
	if text == "" {
		return nil
	}
	hasContact := emailRe.MatchString(text) || phoneRe.MatchString(text)

	found := make(map[string]bool)
	for _, m := range personNameRe.FindAllString(text, -1) {
		cand := strings.TrimSpace(m)
		if bannedTerms[strings.ToLower(cand)] {
			continue
		}

		parts := strings.Fields(cand)
		if !looksLikePerson(parts) {
			continue
		}

		if !hasContact {
			if containsBannedSuffix(parts) {
				continue
			}
			if hasOverlongToken(parts) {
				continue
			}
		}

		found[cand] = true
	}

	if len(found) == 0 {
		return nil
	}
	names := make([]string, 0, len(found))
	for n := range found {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// looksLikePerson accepts 2-4 tokens shaped like "John" or "Q." so middle
// initials pass.
func looksLikePerson(parts []string) bool {
	if len(parts) < 2 || len(parts) > 4 {
		return false
	}
	for _, p := range parts {
		if middleInitialRe.MatchString(p) {
			continue
		}
		if !properTokenRe.MatchString(p) {
			return false
		}
		if stopwords[p] {
			return false
		}
	}
	return !bannedSuffixes[parts[len(parts)-1]]
}

func containsBannedSuffix(parts []string) bool {
	for _, p := range parts {
		if bannedSuffixes[p] {
			return true
		}
	}
	return false
}

func hasOverlongToken(parts []string) bool {
	for _, p := range parts {
		// likely a compound or subject keyword, not a name
		if len(p) > 20 {
			return true
		}
	}
	return false
}

var (
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugStripRe    = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapseRe = regexp.MustCompile(`-{2,}`)
)

// PersonId normalizes a display name to its stable slug: lowercase,
// whitespace to single hyphens, anything outside [a-z0-9-] stripped,
// repeated hyphens collapsed, edges trimmed. Distinct spellings that
// normalize identically are the same Person.
func PersonId(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = slugSpaceRe.ReplaceAllString(base, "-")
	base = slugStripRe.ReplaceAllString(base, "")
	base = slugCollapseRe.ReplaceAllString(base, "-")
	return strings.Trim(base, "-")
}
