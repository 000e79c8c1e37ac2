package fa

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	zwnj    = '\u200c'
	tatweel = '\u0640'
)

// foldDigit maps Persian and Arabic-Indic digits and separators to ASCII.
func foldDigit(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r == '٫': // Arabic decimal separator
		return '.'
	case r == '٬': // Arabic thousands separator
		return ','
	}
	return r
}

// foldLetter maps Arabic letter variants to their Persian forms.
func foldLetter(r rune) rune {
	switch r {
	case 'ي', 'ى':
		return 'ی'
	case 'ك':
		return 'ک'
	case 'ة':
		return 'ه'
	case zwnj:
		return ' '
	}
	return foldDigit(r)
}

// Digits folds Persian and Arabic-Indic digits (and the Arabic decimal and
// thousands separators) to their ASCII equivalents.
func Digits(s string) string {
	out, _, err := transform.String(runes.Map(foldDigit), s)
	if err != nil {
		return s
	}
	return out
}

// Fold normalizes a display name for substring matching: ASCII digits,
// Persian letter forms, lower case, ZWNJ as space, no tatweel and single
// spaces.
func Fold(s string) string {
	t := transform.Chain(
		runes.Remove(runes.Predicate(func(r rune) bool { return r == tatweel })),
		runes.Map(foldLetter),
		cases.Lower(language.Und),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// FormatNumber renders the integer part of v with Persian digits and
// grouping, the way prices are shown to users.
func FormatNumber(v float64) string {
	p := message.NewPrinter(language.Persian)
	return p.Sprintf("%d", int64(math.Floor(v)))
}
