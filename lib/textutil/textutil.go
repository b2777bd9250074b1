package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

// ContainsAny reports whether the lowercased text contains any of the
// given keywords. Keywords are expected to already be lowercase.
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

var numberRegex = regexp.MustCompile(`\d+`)

// Numbers returns up to max integer tokens found in the text, in order.
func Numbers(text string, max int) []int {
	matches := numberRegex.FindAllString(text, max)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
