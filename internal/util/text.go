package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	reDigit       = regexp.MustCompile(`[0-9]`)
	reEightDigits = regexp.MustCompile(`(?:^|[^0-9])([0-9]{8})(?:[^0-9]|$)`)
)

// NormalizeText composes unicode (NFC), folds whitespace runs and trims.
func NormalizeText(input string) string {
	s := norm.NFC.String(input)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TrimValueTail drops trailing whitespace, commas and periods.
func TrimValueTail(input string) string {
	return strings.TrimRightFunc(input, func(r rune) bool {
		return r == ',' || r == '.' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0'
	})
}

func ContainsDigit(input string) bool {
	return reDigit.MatchString(input)
}

// FindBranchNumbers returns every standalone 8-digit token in text, in order.
func FindBranchNumbers(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		// Adjacent tokens share a separator, so scan by offset instead of FindAll.
		for rest := line; rest != ""; {
			loc := reEightDigits.FindStringSubmatchIndex(rest)
			if loc == nil {
				break
			}
			out = append(out, rest[loc[2]:loc[3]])
			rest = rest[loc[3]:]
		}
	}
	return out
}

func StringPtr(v string) *string {
	return &v
}

func DerefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
