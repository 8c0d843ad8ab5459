package generator

import (
	"regexp"
	"strings"
	"time"
)

var (
	alphaDigitRe = regexp.MustCompile(`([a-zA-Z]+)([0-9]+)`)
	digitAlphaRe = regexp.MustCompile(`([0-9]+)([a-zA-Z]+)`)
	punctRe      = regexp.MustCompile(`[[:punct:]]`)
	numericRe    = regexp.MustCompile(`^[0-9]+$`)
)

// dateLayouts are the formats a lone token is tested against when stripping
// dates from entity descriptions.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"01/02/2006",
	"January",
	"Jan",
	"2006",
	"15:04",
}

// SimplifyOptions selects which cleanup passes SimplifyString applies.
type SimplifyOptions struct {
	Brackets   bool
	Dates      bool
	Numbers    bool
	SingleChar bool
}

// DefaultSimplifyOptions enables every cleanup pass.
func DefaultSimplifyOptions() SimplifyOptions {
	return SimplifyOptions{Brackets: true, Dates: true, Numbers: true, SingleChar: true}
}

// SimplifyString strips noise from a label or description before it is used
// as embedding context: leading bracketed asides (pronunciations, birth
// dates), date tokens, bare numbers, and single characters.
func SimplifyString(input string, opts SimplifyOptions) string {
	s := input
	if opts.Brackets {
		s = removeBrackets(s)
	}
	if opts.Dates {
		s = removeDates(s)
	}
	if opts.Numbers {
		s = removeNumbers(s)
	}
	if opts.SingleChar {
		s = removeSingleChar(s)
	}
	return s
}

// removeBrackets drops a parenthesized run when it opens within the first
// five tokens, where it is almost always a pronunciation or dates aside
// rather than content.
func removeBrackets(s string) string {
	tokens := strings.Fields(s)
	n := len(tokens)
	if n > 5 {
		n = 5
	}
	maxPos := len(strings.Join(tokens[:n], " "))

	open := strings.Index(s, "(")
	close := strings.Index(s, ")")
	if open >= 0 && close > open && open < maxPos {
		return s[:open] + s[close+1:]
	}
	return s
}

// removeDates drops tokens that parse as dates, splitting glued runs like
// "November2011" first.
func removeDates(s string) string {
	s = alphaDigitRe.ReplaceAllString(s, "$1 $2")
	s = digitAlphaRe.ReplaceAllString(s, "$1 $2 ")

	var kept []string
	for _, token := range strings.Fields(s) {
		if looksLikeDate(token) || looksLikeDate(punctRe.ReplaceAllString(token, "")) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

func looksLikeDate(token string) bool {
	if token == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, token); err == nil {
			return true
		}
	}
	return false
}

func removeNumbers(s string) string {
	var kept []string
	for _, token := range strings.Fields(s) {
		if numericRe.MatchString(token) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

func removeSingleChar(s string) string {
	var kept []string
	for _, token := range strings.Fields(s) {
		if len(token) > 1 {
			kept = append(kept, token)
		}
	}
	return strings.Join(kept, " ")
}
