package usecase

import (
	"regexp"
	"strings"

	"github.com/marketwatch/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	// Parenthesized and bracketed segments usually carry redundant
	// brand/marketing text and are dropped wholesale.
	parenSegmentRegex   = regexp.MustCompile(`\([^)]*\)`)
	bracketSegmentRegex = regexp.MustCompile(`\[[^\]]*\]`)

	hyphenUnderscoreRegex = regexp.MustCompile(`[-_]`)

	// Keeps Unicode letters and digits so Korean marketplace titles survive
	// normalization intact.
	nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

	multiSpaceRegex = regexp.MustCompile(`\s+`)

	// Model codes look like "S24", "WH1000XM5": 1-3 letters, 2-4 digits,
	// optional trailing letters, token-bounded.
	modelCodeRegex = regexp.MustCompile(`\b[a-z]{1,3}[0-9]{2,4}[a-z]*\b`)

	// Capacity patterns tried in order; the first hit wins. Korean unit
	// suffixes cannot take a trailing \b because the ASCII word-boundary
	// assertion never fires after a Hangul rune.
	capacityRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\b([0-9]{1,3})\s*(?:gb\b|tb\b|mb\b)`),
		regexp.MustCompile(`\b([0-9]{1,2}(?:\.[0-9])?)\s*(?:inch\b|인치)`),
		regexp.MustCompile(`\b([0-9]{1,3})\s*(?:cm\b|센티)`),
	}
)

// vocabularyEntry maps a canonical value to the normalized-title substrings
// that identify it. Order matters: the first vocabulary hit wins.
type vocabularyEntry struct {
	canonical string
	aliases   []string
}

var brandVocabulary = []vocabularyEntry{
	{"samsung", []string{"samsung", "삼성"}},
	{"lg", []string{"lg", "엘지"}},
	{"apple", []string{"apple", "애플"}},
	{"xiaomi", []string{"xiaomi", "샤오미"}},
	{"sony", []string{"sony", "소니"}},
	{"asus", []string{"asus", "에이수스"}},
	{"lenovo", []string{"lenovo", "레노버"}},
	{"hp", []string{"hp"}},
	{"dell", []string{"dell"}},
}

var colorVocabulary = []vocabularyEntry{
	{"black", []string{"black", "블랙"}},
	{"white", []string{"white", "화이트"}},
	{"silver", []string{"silver", "실버"}},
	{"gold", []string{"gold", "골드"}},
	{"blue", []string{"blue", "블루"}},
	{"red", []string{"red", "레드"}},
	{"green", []string{"green", "그린"}},
	{"gray", []string{"gray", "grey", "그레이"}},
	{"pink", []string{"pink", "핑크"}},
}

// NormalizeTitle canonicalizes a free-text marketplace title: lower-case,
// strip (...) and [...] segments, hyphens/underscores to spaces, drop
// remaining punctuation, collapse whitespace. Pure and idempotent; empty
// input yields empty output.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}

	normalized := strings.ToLower(title)
	normalized = parenSegmentRegex.ReplaceAllString(normalized, "")
	normalized = bracketSegmentRegex.ReplaceAllString(normalized, "")
	normalized = hyphenUnderscoreRegex.ReplaceAllString(normalized, " ")
	normalized = nonWordRegex.ReplaceAllString(normalized, "")
	normalized = multiSpaceRegex.ReplaceAllString(normalized, " ")

	return strings.TrimSpace(normalized)
}

// ExtractTokens pulls structured attributes out of a raw title. Every
// attribute is optional: a failed extraction leaves the key absent rather
// than storing an empty placeholder.
func ExtractTokens(title string) domain.TokenSet {
	normalized := NormalizeTitle(title)
	tokens := domain.TokenSet{}
	if normalized == "" {
		return tokens
	}

	if brand, ok := matchVocabulary(normalized, brandVocabulary); ok {
		tokens[domain.TokenBrand] = brand
	}

	if model := modelCodeRegex.FindString(normalized); model != "" {
		tokens[domain.TokenModelCode] = model
	}

	for _, pattern := range capacityRegexes {
		if m := pattern.FindStringSubmatch(normalized); m != nil {
			tokens[domain.TokenCapacity] = m[1]
			break
		}
	}

	if color, ok := matchVocabulary(normalized, colorVocabulary); ok {
		tokens[domain.TokenColor] = color
	}

	return tokens
}

// matchVocabulary returns the canonical value of the first vocabulary entry
// whose alias appears as a substring of the normalized title.
func matchVocabulary(normalized string, vocabulary []vocabularyEntry) (string, bool) {
	for _, entry := range vocabulary {
		for _, alias := range entry.aliases {
			if strings.Contains(normalized, alias) {
				return entry.canonical, true
			}
		}
	}
	return "", false
}
