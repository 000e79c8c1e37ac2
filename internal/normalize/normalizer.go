package normalize

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/arzlive/arzlive/internal/fa"
	"github.com/arzlive/arzlive/internal/model"
)

// Default unit thresholds (values above are treated as Rial).
const (
	DefaultCurrencyThreshold = 200_000
	DefaultGoldGramThreshold = 10_000_000
	DefaultGoldCoinThreshold = 100_000_000
	DefaultCryptoThreshold   = 20_000_000_000
)

var (
	one = decimal.NewFromInt(1)
	ten = decimal.NewFromInt(10)
)

// Thresholds holds the per-class magnitude above which a raw value is in Rial.
// A zero threshold disables the conversion for that class.
type Thresholds struct {
	Currency float64
	GoldGram float64
	GoldCoin float64
	Crypto   float64
}

// DefaultThresholds returns thresholds calibrated for the reference catalog.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Currency: DefaultCurrencyThreshold,
		GoldGram: DefaultGoldGramThreshold,
		GoldCoin: DefaultGoldCoinThreshold,
		Crypto:   DefaultCryptoThreshold,
	}
}

// For returns the threshold for class.
func (t Thresholds) For(class model.Class) float64 {
	switch class {
	case model.ClassCurrency:
		return t.Currency
	case model.ClassGoldGram:
		return t.GoldGram
	case model.ClassGoldCoin:
		return t.GoldCoin
	case model.ClassCrypto:
		return t.Crypto
	}
	return 0
}

// Normalizer converts raw upstream values into canonical Toman prices.
// It is stateless and safe for concurrent use.
type Normalizer struct {
	thresholds Thresholds
}

// New creates a Normalizer with the given thresholds.
func New(t Thresholds) *Normalizer {
	return &Normalizer{thresholds: t}
}

// Thresholds returns the configured thresholds.
func (n *Normalizer) Thresholds() Thresholds {
	return n.thresholds
}

// Divisor returns 10 when v is above the class threshold (Rial), else 1.
func (n *Normalizer) Divisor(class model.Class, v decimal.Decimal) decimal.Decimal {
	th := n.thresholds.For(class)
	if th > 0 && v.GreaterThan(decimal.NewFromFloat(th)) {
		return ten
	}
	return one
}

// divisorIn is Divisor unless the record declares its unit.
func (n *Normalizer) divisorIn(class model.Class, v decimal.Decimal, unit SourceUnit) decimal.Decimal {
	switch unit {
	case UnitRial:
		return ten
	case UnitToman:
		return one
	}
	return n.Divisor(class, v)
}

// Normalize parses raw and returns the canonical price for class.
// Missing, unparsable, zero and negative values return ok=false; callers
// must keep the previous price in that case.
func (n *Normalizer) Normalize(class model.Class, raw string) (decimal.Decimal, bool) {
	return n.NormalizeIn(class, raw, UnitUnknown)
}

// NormalizeIn is Normalize for a record that may declare its unit. A
// declared unit replaces the magnitude guess.
func (n *Normalizer) NormalizeIn(class model.Class, raw string, unit SourceUnit) (decimal.Decimal, bool) {
	v, ok := ParseNumber(raw)
	if !ok || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v.Div(n.divisorIn(class, v, unit)), true
}

// Scale applies the unit decision to an already parsed positive value.
func (n *Normalizer) Scale(class model.Class, v decimal.Decimal) decimal.Decimal {
	return v.Div(n.Divisor(class, v))
}

// NormalizeDelta converts an absolute change reported next to rawPrice.
// The unit is decided by the price so one record never mixes units.
// Deltas may be zero or negative.
func (n *Normalizer) NormalizeDelta(class model.Class, rawPrice, rawDelta string) (decimal.Decimal, bool) {
	return n.NormalizeDeltaIn(class, rawPrice, rawDelta, UnitUnknown)
}

// NormalizeDeltaIn is NormalizeDelta with a declared unit.
func (n *Normalizer) NormalizeDeltaIn(class model.Class, rawPrice, rawDelta string, unit SourceUnit) (decimal.Decimal, bool) {
	p, ok := ParseNumber(rawPrice)
	if !ok || !p.IsPositive() {
		return decimal.Zero, false
	}
	d, ok := ParseNumber(rawDelta)
	if !ok {
		return decimal.Zero, false
	}
	return d.Div(n.divisorIn(class, p, unit)), true
}

// numberNoise is stripped before parsing: unit words and percent signs.
var numberNoise = strings.NewReplacer(
	"تومان", "",
	"ریال", "",
	"ريال", "",
	"%", "",
	"٪", "",
)

// ParseNumber parses a number that may carry thousands separators, Persian
// digits, a unit word or a percent sign. Exponent form is accepted. Anything
// else left over makes the input unparsable. Empty and unparsable input
// returns ok=false, which is distinct from a parsed zero.
func ParseNumber(raw string) (decimal.Decimal, bool) {
	s := numberNoise.Replace(fa.Digits(raw))
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == '\u200c' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// ParseChange parses a percent change. Zero and negative values are valid.
func ParseChange(raw string) (float64, bool) {
	v, ok := ParseNumber(raw)
	if !ok {
		return 0, false
	}
	return v.InexactFloat64(), true
}
