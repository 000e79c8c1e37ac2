package match

import (
	"slices"
	"strings"

	"github.com/arzlive/arzlive/internal/fa"
	"github.com/arzlive/arzlive/internal/model"
)

// Strategy identifies how a record was matched.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategySymbol
	StrategyFragment
)

func (s Strategy) String() string {
	switch s {
	case StrategySymbol:
		return "symbol"
	case StrategyFragment:
		return "fragment"
	}
	return "none"
}

// Record holds the identifying fields of one upstream item.
type Record struct {
	Symbol string
	Slug   string
	Name   string
	NameEn string
}

// Resolution is the matched instrument for the record at Index.
type Resolution struct {
	Index      int
	Instrument model.Instrument
	Strategy   Strategy
}

type fragment struct {
	text string
	idx  int
}

// Matcher resolves records against a fixed instrument set.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	instruments []model.Instrument
	symbols     map[string][]int
	fragments   []fragment
}

// NewMatcher builds the lookup tables for instruments. The instrument id
// is always an alias of itself.
func NewMatcher(instruments []model.Instrument) *Matcher {
	m := &Matcher{
		instruments: slices.Clone(instruments),
		symbols:     make(map[string][]int),
	}
	for i, inst := range m.instruments {
		aliases := append([]string{inst.ID}, inst.Symbols...)
		for _, a := range aliases {
			key := symbolKey(a)
			if key == "" || slices.Contains(m.symbols[key], i) {
				continue
			}
			m.symbols[key] = append(m.symbols[key], i)
		}
		for _, f := range inst.NameFragments {
			if folded := fa.Fold(f); folded != "" {
				m.fragments = append(m.fragments, fragment{text: folded, idx: i})
			}
		}
	}
	return m
}

// Instruments returns a copy of the instrument set.
func (m *Matcher) Instruments() []model.Instrument {
	return slices.Clone(m.instruments)
}

// Match identifies rec within section sec.
func (m *Matcher) Match(rec Record, sec model.Section) (model.Instrument, Strategy, bool) {
	for _, raw := range []string{rec.Symbol, rec.Slug, rec.NameEn} {
		for _, i := range m.symbols[symbolKey(raw)] {
			if m.instruments[i].InSection(sec) {
				return m.instruments[i], StrategySymbol, true
			}
		}
	}

	for _, raw := range []string{rec.Name, rec.NameEn} {
		name := fa.Fold(raw)
		if name == "" {
			continue
		}
		for _, f := range m.fragments {
			if m.instruments[f.idx].InSection(sec) && strings.Contains(name, f.text) {
				return m.instruments[f.idx], StrategyFragment, true
			}
		}
	}

	return model.Instrument{}, StrategyNone, false
}

// Resolve matches every record of one section. At most one resolution is
// returned per instrument id: the first symbol match if any, otherwise the
// first fragment match. Results are ordered by record index.
func (m *Matcher) Resolve(recs []Record, sec model.Section) []Resolution {
	byID := make(map[string]Resolution)
	for i, rec := range recs {
		inst, strategy, ok := m.Match(rec, sec)
		if !ok {
			continue
		}
		prev, seen := byID[inst.ID]
		if seen && !(prev.Strategy == StrategyFragment && strategy == StrategySymbol) {
			continue
		}
		byID[inst.ID] = Resolution{Index: i, Instrument: inst, Strategy: strategy}
	}

	out := make([]Resolution, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Resolution) int { return a.Index - b.Index })
	return out
}

func symbolKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
