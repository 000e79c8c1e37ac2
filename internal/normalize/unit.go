package normalize

import "github.com/arzlive/arzlive/internal/fa"

// SourceUnit is the unit an upstream record declares for its prices.
type SourceUnit int

const (
	UnitUnknown SourceUnit = iota // decide by magnitude
	UnitToman
	UnitRial
)

func (u SourceUnit) String() string {
	switch u {
	case UnitToman:
		return "toman"
	case UnitRial:
		return "rial"
	}
	return "unknown"
}

// ParseSourceUnit reads an upstream unit field. Unrecognized values are
// UnitUnknown.
func ParseSourceUnit(s string) SourceUnit {
	switch fa.Fold(s) {
	case "toman", "irt", "تومان":
		return UnitToman
	case "rial", "irr", "ریال":
		return UnitRial
	}
	return UnitUnknown
}
