package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// CleanNumber reads a locale-formatted amount such as "1 234,50 $".
// Currency symbols and every kind of space are dropped, the first comma
// becomes the decimal point and the longest numeric prefix is parsed.
// Anything unreadable yields 0.
func CleanNumber(raw string) float64 {
	value := strings.Map(func(r rune) rune {
		if r == '$' || r == '€' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if value == "" {
		return 0
	}
	value = strings.Replace(value, ",", ".", 1)

	prefix := leadingFloat.FindString(value)
	if prefix == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// CleanInt is CleanNumber truncated toward zero.
func CleanInt(raw string) int {
	return int(CleanNumber(raw))
}
