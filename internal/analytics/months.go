package analytics

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var monthOrder = []string{
	"JANVIER", "FEVRIER", "MARS", "AVRIL", "MAI", "JUIN",
	"JUILLET", "AOUT", "SEPTEMBRE", "OCTOBRE", "NOVEMBRE", "DECEMBRE",
}

var englishMonths = map[string]int{
	"JANUARY": 0, "FEBRUARY": 1, "MARCH": 2, "APRIL": 3, "MAY": 4, "JUNE": 5,
	"JULY": 6, "AUGUST": 7, "SEPTEMBER": 8, "OCTOBER": 9, "NOVEMBER": 10, "DECEMBER": 11,
}

var weekPrefix = regexp.MustCompile(`^\d{4}W`)

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// MonthIndex returns the calendar position (0-11) of a month label. French
// names with or without accents and English names are recognized; any
// other label gets -1 and sorts before JANVIER.
func MonthIndex(label string) int {
	key := strings.ToUpper(foldAccents(strings.TrimSpace(label)))
	for idx, name := range monthOrder {
		if key == name {
			return idx
		}
	}
	if idx, ok := englishMonths[key]; ok {
		return idx
	}
	return -1
}

// MonthLabel is the short axis label of a month: its first four letters.
func MonthLabel(label string) string {
	r := []rune(label)
	if len(r) > 4 {
		r = r[:4]
	}
	return string(r)
}

// WeekLabel turns "2025W05" into "S05". Other codes are returned as is.
func WeekLabel(code string) string {
	return weekPrefix.ReplaceAllString(code, "S")
}
