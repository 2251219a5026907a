// Package normalize canonicalizes free-text song titles and artist names
// into comparable keys so that the same song can be matched across the
// scraped charts, the catalog API, and the bulk reference file.
package normalize

import (
	"regexp"
	"strings"
)

var (
	parenRe      = regexp.MustCompile(`\([^)]*\)`)
	dashSplitRe  = regexp.MustCompile(`\s+-\s+`)
	titleFeatRe  = regexp.MustCompile(`\s+feat\.|\s+ft\.|\s+featuring`)
	artistFeatRe = regexp.MustCompile(`\s+feat\.|\s+ft\.|\s+featuring|\s+and\s+|&`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// TitleKey normalizes a song title into a matching key. Parenthesized
// suffixes, " - " tails, and featured-artist tails are dropped; the result
// contains only lower-case alphanumerics and single spaces. Empty input
// yields an empty key.
func TitleKey(text string) string {
	t := strings.ToLower(text)
	t = parenRe.ReplaceAllString(t, " ")
	t = splitFirst(t, dashSplitRe)
	t = splitFirst(t, titleFeatRe)
	return collapse(t)
}

// ArtistKey normalizes an artist name into a matching key. Unlike TitleKey
// it also truncates at "and"/"&" so multi-artist billing collapses to the
// primary artist.
func ArtistKey(text string) string {
	t := strings.ToLower(text)
	t = splitFirst(t, artistFeatRe)
	return collapse(t)
}

func splitFirst(s string, re *regexp.Regexp) string {
	if loc := re.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

func collapse(s string) string {
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
