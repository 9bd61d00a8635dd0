// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
)

// FallbackWords is how many leading words stand in for the abstract when
// the text has no "abstract" heading.
const FallbackWords = 500

// boundaryMarkers end the abstract span; the earliest match wins.
var boundaryMarkers = []string{"introduction", "keywords", "1.", "i.", "1 introduction"}

// LocateAbstract isolates the abstract in text extracted from a paper.
//
// The span starts at the first case-insensitive "abstract" and ends at the
// earliest boundary marker after it, or at the end of the text. Whitespace
// is collapsed and the leading "Abstract" heading removed. Markers that
// appear inside the abstract itself truncate it early.
//
// Without an "abstract" token the first FallbackWords words are returned.
// An empty string means no abstract could be isolated.
func LocateAbstract(text string) string {
	lower := asciiLower(text)

	start := strings.Index(lower, "abstract")
	if start < 0 {
		return firstWords(text, FallbackWords)
	}

	end := len(text)
	for _, m := range boundaryMarkers {
		if i := strings.Index(lower[start:], m); i >= 0 && start+i < end {
			end = start + i
		}
	}

	span := strings.Join(strings.Fields(text[start:end]), " ")
	return stripHeading(span)
}

// stripHeading removes the leading "abstract" word and any punctuation
// that separates it from the body, as in "Abstract:" or "ABSTRACT.".
func stripHeading(s string) string {
	if len(s) >= len("abstract") && strings.EqualFold(s[:len("abstract")], "abstract") {
		s = s[len("abstract"):]
	}
	return strings.TrimLeft(s, " :.-—–")
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// asciiLower lowercases A-Z only, so byte offsets in the result line up
// with the original text.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
