package enrich

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	integralDecimal = regexp.MustCompile(`^[0-9]+\.0+$`)
	exponentNumber  = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[eE][+-]?[0-9]+$`)
	allDigits       = regexp.MustCompile(`^[0-9]+$`)
)

// NormalizeKey returns the canonical form of a region id so ids read from
// text and numeric cells compare equal: NUL padding and whitespace are
// stripped, text is NFC normalized, integral numbers lose their fraction
// ("3201.0" becomes "3201") and, when pad > 0, all-digit keys are
// left-padded with zeros to pad characters.
func NormalizeKey(raw string, pad int) string {
	s := norm.NFC.String(strings.TrimSpace(strings.Trim(raw, "\x00")))

	switch {
	case integralDecimal.MatchString(s):
		s = s[:strings.IndexByte(s, '.')]
	case exponentNumber.MatchString(s):
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			s = strconv.FormatInt(int64(f), 10)
		}
	}

	if pad > 0 && allDigits.MatchString(s) && len(s) < pad {
		s = strings.Repeat("0", pad-len(s)) + s
	}
	return s
}
