package clean

import (
	"strconv"
	"strings"
	"time"
)

// numericJunk strips everything that is not a digit, decimal point, or sign,
// which removes thousands separators, currency marks, and stray whitespace.
func numericJunk(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanNumeric coerces a raw cell to a canonical decimal string. Values that
// fail to parse become "" (NULL); when allowNegative is false, negative
// values become "" as well.
func CleanNumeric(s string, allowNegative bool) string {
	s = numericJunk(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ""
	}
	if !allowNegative && v < 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// dateLayouts are tried in order. ISO forms first because that is what the
// exports use when they are well-behaved.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate best-effort parses a locale-ambiguous date string. Returns nil
// for unparseable values, never an error.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// CleanDate coerces a raw cell to ISO yyyy-mm-dd, or "" when unparseable.
func CleanDate(s string) string {
	t := ParseDate(s)
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// NormalizeKey canonicalizes a join key to its string form. Numeric-typed
// exports render integer ids as "42.0"; trimming the fractional artifact is
// what keeps cross-table joins from silently producing no matches.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if dot := strings.IndexByte(s, '.'); dot >= 0 && dot > 0 {
		frac := s[dot+1:]
		if frac != "" && strings.Trim(frac, "0") == "" && isDigits(s[:dot]) {
			return s[:dot]
		}
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CleanBool canonicalizes truthy cell values to "true"/"false"; anything
// unrecognized (including empty) maps to def.
func CleanBool(s string, def bool) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return "true"
	case "false", "f", "no", "n", "0":
		return "false"
	default:
		return strconv.FormatBool(def)
	}
}
