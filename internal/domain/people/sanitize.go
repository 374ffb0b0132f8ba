package people

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// strictPolicy strips every HTML element and attribute, leaving text only.
var strictPolicy = bluemonday.StrictPolicy()

// Sanitize removes markup, script content and control characters from
// user-supplied free text and trims surrounding whitespace.
//
// The function is idempotent (Sanitize(Sanitize(s)) == Sanitize(s)), never
// fails, and maps empty input to the empty string. No '<' or '>' from the
// input survives, not even through layered entity escaping.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = strictPolicy.Sanitize(s)
	s = unescapeAll(s)
	s = stripControl(s)
	s = strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, s)
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}

// unescapeAll resolves HTML entities to a fixpoint so that doubly escaped
// payloads ("&amp;lt;script&amp;gt;") cannot smuggle markup past a single
// decoding pass.
func unescapeAll(s string) string {
	for {
		u := html.UnescapeString(s)
		if u == s {
			return s
		}
		s = u
	}
}

// stripControl removes control characters, keeping tab and newline which are
// legitimate in multi-line notes fields.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Truncate caps a string at max runes without splitting a character
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
