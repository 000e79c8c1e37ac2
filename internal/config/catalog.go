package config

import (
	"fmt"
	"slices"

	"github.com/arzlive/arzlive/internal/model"
)

// Instruments applies the catalog overrides to base. Entries whose id is in
// base replace the non-empty fields of that instrument; other entries are
// appended and must be complete.
func (c *Config) Instruments(base []model.Instrument) ([]model.Instrument, error) {
	out := make([]model.Instrument, len(base))
	for i, inst := range base {
		out[i] = cloneInstrument(inst)
	}

	for _, o := range c.Catalog {
		idx := slices.IndexFunc(out, func(inst model.Instrument) bool { return inst.ID == o.ID })
		if idx < 0 {
			inst := model.Instrument{ID: o.ID}
			o.apply(&inst)
			if !inst.Category.Valid() || !inst.Class.Valid() || len(inst.Sections) == 0 {
				return nil, fmt.Errorf("catalog entry %q needs category, class and sections", o.ID)
			}
			out = append(out, inst)
			continue
		}
		o.apply(&out[idx])
	}

	return out, nil
}

func (o InstrumentConfig) apply(inst *model.Instrument) {
	if o.NameFa != "" {
		inst.NameFa = o.NameFa
	}
	if o.NameEn != "" {
		inst.NameEn = o.NameEn
	}
	if o.Category != "" {
		inst.Category = model.Category(o.Category)
	}
	if o.Class != "" {
		inst.Class = model.Class(o.Class)
	}
	if o.SeedPrice > 0 {
		inst.SeedPrice = o.SeedPrice
	}
	if len(o.Symbols) > 0 {
		inst.Symbols = slices.Clone(o.Symbols)
	}
	if len(o.Fragments) > 0 {
		inst.NameFragments = slices.Clone(o.Fragments)
	}
	if len(o.Sections) > 0 {
		inst.Sections = make([]model.Section, len(o.Sections))
		for i, s := range o.Sections {
			inst.Sections[i] = model.Section(s)
		}
	}
	if o.Reference {
		inst.Reference = true
	}
}

func cloneInstrument(inst model.Instrument) model.Instrument {
	inst.Symbols = slices.Clone(inst.Symbols)
	inst.NameFragments = slices.Clone(inst.NameFragments)
	inst.Sections = slices.Clone(inst.Sections)
	return inst
}
