package normalize

import "github.com/shopspring/decimal"

// DefaultFallbackRate is the fixed USD to Toman rate used when no better
// rate is available in the cycle.
const DefaultFallbackRate = 70_000

// RateProvider yields a reference-unit to Toman rate, if it has one.
type RateProvider interface {
	Name() string
	Rate() (decimal.Decimal, bool)
}

// RateFunc adapts a function to RateProvider.
type RateFunc struct {
	Label string
	Fn    func() (decimal.Decimal, bool)
}

func (f RateFunc) Name() string { return f.Label }

func (f RateFunc) Rate() (decimal.Decimal, bool) {
	if f.Fn == nil {
		return decimal.Zero, false
	}
	return f.Fn()
}

// FixedRate always yields Value.
type FixedRate struct {
	Label string
	Value decimal.Decimal
}

func (f FixedRate) Name() string { return f.Label }

func (f FixedRate) Rate() (decimal.Decimal, bool) {
	return f.Value, f.Value.IsPositive()
}

// RateChain is an ordered list of providers; the first positive rate wins.
type RateChain []RateProvider

// Resolve returns the first positive rate and the name of its provider.
func (c RateChain) Resolve() (decimal.Decimal, string, bool) {
	for _, p := range c {
		if r, ok := p.Rate(); ok && r.IsPositive() {
			return r, p.Name(), true
		}
	}
	return decimal.Zero, "", false
}

// Convert multiplies amount by the first available rate.
func (c RateChain) Convert(amount decimal.Decimal) (decimal.Decimal, string, bool) {
	r, name, ok := c.Resolve()
	if !ok {
		return decimal.Zero, "", false
	}
	return amount.Mul(r), name, true
}
