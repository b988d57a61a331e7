// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"fmt"
	"strings"
	"unicode"
)

// Make lowercases the name, keeps letters and digits, and collapses every
// other run of characters into a single hyphen.
func Make(name string) string {
	var b strings.Builder
	prevHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// Unique appends numeric suffixes (name, name-1, name-2, ...) until taken
// reports the candidate free. taken is consulted once per candidate.
func Unique(name string, taken func(string) (bool, error)) (string, error) {
	base := Make(name)
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for i := 1; ; i++ {
		inUse, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
