package model

import (
	"slices"
	"time"
)

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// Category groups assets for display. It never drives normalization.
type Category string

const (
	CategoryCurrency Category = "CURRENCY"
	CategoryGold     Category = "GOLD"
	CategoryCrypto   Category = "CRYPTO"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCurrency, CategoryGold, CategoryCrypto:
		return true
	}
	return false
}

// Class selects the unit threshold used when normalizing raw upstream values.
type Class string

const (
	ClassCurrency Class = "currency"
	ClassGoldGram Class = "gold_gram"
	ClassGoldCoin Class = "gold_coin"
	ClassCrypto   Class = "crypto"
)

// Valid reports whether c is one of the known normalization classes.
func (c Class) Valid() bool {
	switch c {
	case ClassCurrency, ClassGoldGram, ClassGoldCoin, ClassCrypto:
		return true
	}
	return false
}

// Section identifies which upstream list a record came from.
type Section string

const (
	SectionCurrency Section = "currency"
	SectionGold     Section = "gold"
	SectionCrypto   Section = "crypto"
	// SectionMixed is a combined currency and gold list that the feed did not split.
	SectionMixed Section = "mixed"
)

// Fiat reports whether records of this section are resolved before crypto conversion.
func (s Section) Fiat() bool {
	return s != SectionCrypto
}

// -----------------------------------------------------------------------------
// Catalog Types
// -----------------------------------------------------------------------------

// Instrument is the static definition of one tracked (or reference) instrument.
type Instrument struct {
	ID        string   // Catalog id, join key for matching and history
	NameFa    string   // Persian display name
	NameEn    string   // Symbolic display name
	Category  Category // Display grouping
	Class     Class    // Normalization class
	SeedPrice float64  // Placeholder price before the first successful poll (Toman)

	Symbols       []string  // Exact symbol/slug aliases (case-insensitive)
	NameFragments []string  // Localized name fragments for substring matching
	Sections      []Section // Upstream lists the instrument is matched in

	// Reference instruments feed rate conversion only and are not part of the catalog.
	Reference bool
}

// InSection reports whether the instrument is matched in records from sec.
// A mixed section covers both currency and gold instruments.
func (i Instrument) InSection(sec Section) bool {
	if sec == SectionMixed {
		return slices.Contains(i.Sections, SectionCurrency) || slices.Contains(i.Sections, SectionGold)
	}
	return slices.Contains(i.Sections, sec)
}

// HistoryPoint is one (timestamp, price) sample.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Asset is the normalized catalog entry handed to the UI layer.
type Asset struct {
	ID       string   `json:"id"`
	NameFa   string   `json:"name_fa"`
	NameEn   string   `json:"name_en"`
	Category Category `json:"category"`
	Class    Class    `json:"class"`

	// Latest values (Toman)
	Price          float64   `json:"price"`
	ChangePercent  float64   `json:"change_percent"`
	ChangeAbsolute float64   `json:"change_absolute"`
	AsOf           time.Time `json:"as_of"`

	// Upstream-reported date and time, verbatim (usually Solar Hijri)
	SourceDate string `json:"source_date,omitempty"`
	SourceTime string `json:"source_time,omitempty"`

	History []HistoryPoint `json:"history"`
}

// Clone returns a deep copy of the asset.
func (a Asset) Clone() Asset {
	out := a
	if a.History != nil {
		out.History = slices.Clone(a.History)
	}
	return out
}

// Quote is one normalized upstream observation for a catalog id.
type Quote struct {
	ID             string
	Price          float64
	ChangePercent  float64
	ChangeAbsolute float64
	AsOf           time.Time
	SourceDate     string
	SourceTime     string
}
