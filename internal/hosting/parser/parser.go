// Package parser turns raw hosting-provider filenames into structured,
// comparable records. Provider filenames are noisy: inconsistent separators,
// branding tags, bracketed language groups, and optional year or
// season/episode tokens. Everything keyed into the video index goes through
// NormalizeTitle so that lookups and fuzzy comparison share one canonical
// form.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	extPattern        = regexp.MustCompile(`(?i)\.(mkv|mp4|avi|mov|m4v|webm|mpg|mpeg|wmv|flv|ts)$`)
	braceGroupPattern = regexp.MustCompile(`\{[^}]*\}`)
	brandingPattern   = regexp.MustCompile(`(?i)\bskyflixer\b`)
	seasonEpPattern   = regexp.MustCompile(`(?i)\bS(\d{1,2})E(\d{1,3})\b`)
	yearPattern       = regexp.MustCompile(`\((\d{4})\)`)
	specialCharsRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpaceRegex   = regexp.MustCompile(`\s+`)
)

// ParsedFilename is a structured record derived from a provider filename.
// Season and Episode are both set or both zero; they come from a single
// S01E08-style token. Year is zero when the filename carries no (YYYY) group.
type ParsedFilename struct {
	Title           string `json:"title"`
	NormalizedTitle string `json:"normalizedTitle"`
	Year            int    `json:"year,omitempty"`
	Season          int    `json:"season,omitempty"`
	Episode         int    `json:"episode,omitempty"`
	OriginalName    string `json:"originalName"`
}

// IsSeries reports whether the record carries a season/episode token.
func (p *ParsedFilename) IsSeries() bool {
	return p.Season > 0 || p.Episode > 0
}

// NormalizeTitle converts a title to a normalized form for comparison and
// index keys. It lowercases, replaces every non-alphanumeric character with
// a space, collapses runs of whitespace, and trims. Idempotent and total:
// empty input yields the empty string.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	normalized = specialCharsRegex.ReplaceAllString(normalized, " ")
	normalized = multiSpaceRegex.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// ParseFilename parses a provider filename into a ParsedFilename.
// Returns nil only for empty input. A filename with neither a year nor a
// season/episode token still yields a record; those are indexed as
// year-agnostic movie entries, never dropped.
func ParseFilename(rawName string) *ParsedFilename {
	if rawName == "" {
		return nil
	}

	name := extPattern.ReplaceAllString(rawName, "")
	name = braceGroupPattern.ReplaceAllString(name, "")
	name = brandingPattern.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, "- ")

	parsed := &ParsedFilename{OriginalName: rawName}

	working := name
	if loc := seasonEpPattern.FindStringSubmatchIndex(working); loc != nil {
		season, _ := strconv.Atoi(working[loc[2]:loc[3]])
		episode, _ := strconv.Atoi(working[loc[4]:loc[5]])
		parsed.Season = season
		parsed.Episode = episode
		working = working[:loc[0]]
	}

	if loc := yearPattern.FindStringSubmatchIndex(working); loc != nil {
		if year, err := strconv.Atoi(working[loc[2]:loc[3]]); err == nil {
			parsed.Year = year
			working = working[:loc[0]]
		}
	}

	parsed.Title = cleanTitle(working)
	parsed.NormalizedTitle = NormalizeTitle(parsed.Title)

	return parsed
}

// cleanTitle collapses whitespace and strips trailing hyphens left behind
// by token removal.
func cleanTitle(title string) string {
	cleaned := multiSpaceRegex.ReplaceAllString(title, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimRight(cleaned, "- ")
	return cleaned
}

// OverlapScore computes token overlap between two normalized titles.
// Tokens of length <= 1 are discarded; the score is the intersection size
// divided by the larger set size, in [0, 1]. Symmetric and stateless.
func OverlapScore(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}

	max := len(setA)
	if len(setB) > max {
		max = len(setB)
	}

	return float64(intersection) / float64(max)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		if len(t) <= 1 {
			continue
		}
		set[t] = true
	}
	return set
}
