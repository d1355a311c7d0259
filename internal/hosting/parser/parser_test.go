package parser

import (
	"math"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "punctuation to spaces",
			input:    "Deadpool & Wolverine",
			expected: "deadpool wolverine",
		},
		{
			name:     "colon and mixed case",
			input:    "It: Welcome to Derry",
			expected: "it welcome to derry",
		},
		{
			name:     "multiple spaces",
			input:    "  Multiple   Spaces  ",
			expected: "multiple spaces",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "numbers preserved",
			input:    "2001: A Space Odyssey",
			expected: "2001 a space odyssey",
		},
		{
			name:     "hyphenated",
			input:    "Spider-Man: Into the Spider-Verse",
			expected: "spider man into the spider verse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeTitle(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	inputs := []string{
		"The Matrix (1999)",
		"Schitt's Creek",
		"  WEIRD---input__here  ",
		"",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Errorf("NormalizeTitle not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTitle   string
		wantYear    int
		wantSeason  int
		wantEpisode int
	}{
		{
			name:        "series episode",
			input:       "It: Welcome to Derry S01E08.mkv",
			wantTitle:   "It: Welcome to Derry",
			wantSeason:  1,
			wantEpisode: 8,
		},
		{
			name:      "movie with year and brace tags",
			input:     "Ask Me What You Want (2024) {Hindi-Spanish} SKYFLIXER.mkv",
			wantTitle: "Ask Me What You Want",
			wantYear:  2024,
		},
		{
			name:      "movie with year only",
			input:     "The Matrix (1999).mp4",
			wantTitle: "The Matrix",
			wantYear:  1999,
		},
		{
			name:        "underscores and lowercase token",
			input:       "stranger_things_s02e05.mkv",
			wantTitle:   "stranger things",
			wantSeason:  2,
			wantEpisode: 5,
		},
		{
			name:      "no year no episode retained",
			input:     "Some Obscure Film.avi",
			wantTitle: "Some Obscure Film",
		},
		{
			name:      "trailing hyphen after tag removal",
			input:     "Oldboy (2003) - {Korean} SKYFLIXER.mkv",
			wantTitle: "Oldboy",
			wantYear:  2003,
		},
		{
			name:        "year before episode token",
			input:       "Fallout (2024) S01E03.mkv",
			wantTitle:   "Fallout",
			wantYear:    2024,
			wantSeason:  1,
			wantEpisode: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseFilename(tt.input)
			if parsed == nil {
				t.Fatalf("ParseFilename(%q) returned nil", tt.input)
			}
			if parsed.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", parsed.Title, tt.wantTitle)
			}
			if parsed.Year != tt.wantYear {
				t.Errorf("year = %d, want %d", parsed.Year, tt.wantYear)
			}
			if parsed.Season != tt.wantSeason {
				t.Errorf("season = %d, want %d", parsed.Season, tt.wantSeason)
			}
			if parsed.Episode != tt.wantEpisode {
				t.Errorf("episode = %d, want %d", parsed.Episode, tt.wantEpisode)
			}
			if parsed.OriginalName != tt.input {
				t.Errorf("originalName = %q, want %q", parsed.OriginalName, tt.input)
			}
			if parsed.NormalizedTitle != NormalizeTitle(parsed.Title) {
				t.Errorf("normalizedTitle = %q, want %q", parsed.NormalizedTitle, NormalizeTitle(parsed.Title))
			}
		})
	}
}

func TestParseFilename_Empty(t *testing.T) {
	if ParseFilename("") != nil {
		t.Error("expected nil for empty input")
	}
}

func TestParseFilename_SeasonEpisodeTogether(t *testing.T) {
	// Season and episode come from one token: both set or both zero.
	for _, in := range []string{"Show S03E12.mkv", "Plain Movie (2020).mkv", "No Tokens At All.mkv"} {
		p := ParseFilename(in)
		if p == nil {
			t.Fatalf("nil for %q", in)
		}
		if (p.Season > 0) != (p.Episode > 0) {
			t.Errorf("%q: season=%d episode=%d, want both or neither", in, p.Season, p.Episode)
		}
	}
}

func TestOverlapScore(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical",
			a:        "the matrix",
			b:        "the matrix",
			expected: 1.0,
		},
		{
			name:     "subset",
			a:        "the matrix",
			b:        "matrix",
			expected: 0.5, // "the" and "matrix" vs "matrix"
		},
		{
			name:     "no common tokens",
			a:        "dark",
			b:        "sunshine",
			expected: 0.0,
		},
		{
			name:     "one empty",
			a:        "dark",
			b:        "",
			expected: 0.0,
		},
		{
			name:     "both empty",
			a:        "",
			b:        "",
			expected: 0.0,
		},
		{
			name:     "short tokens discarded",
			a:        "a matrix",
			b:        "matrix",
			expected: 1.0,
		},
		{
			name:     "three of four",
			a:        "the dark knight",
			b:        "the dark knight rises",
			expected: 3.0 / 4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := OverlapScore(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("OverlapScore(%q, %q) = %v, want %v", tt.a, tt.b, result, tt.expected)
			}
			reverse := OverlapScore(tt.b, tt.a)
			if math.Abs(result-reverse) > 0.001 {
				t.Errorf("OverlapScore not symmetric: %v vs %v", result, reverse)
			}
		})
	}
}
