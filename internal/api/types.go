package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Number is a numeric field that the feed sends either as a JSON number or
// as a string that may carry thousands separators. It keeps the raw text;
// parsing is left to the normalizer. Null, booleans and objects decode to
// the empty Number.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*n = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*n = Number(b)
	default:
		*n = ""
	}
	return nil
}

func (n Number) String() string { return string(n) }

// Empty reports whether the field was absent or null.
func (n Number) Empty() bool { return n == "" }

// Item is one instrument record in a feed.
type Item struct {
	Symbol string `json:"symbol"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	NameEn string `json:"name_en"`

	Price      Number `json:"price"`
	PriceToman Number `json:"price_toman"`
	Unit       string `json:"unit"`

	ChangePercent    Number `json:"change_percent"`
	PercentChange24h Number `json:"percent_change_24h"`
	ChangeValue      Number `json:"change_value"`

	Date     string `json:"date"`
	Time     string `json:"time"`
	TimeUnix Number `json:"time_unix"`
}

// Change returns the 24h percent change, preferring percent_change_24h.
func (i Item) Change() Number {
	if !i.PercentChange24h.Empty() {
		return i.PercentChange24h
	}
	return i.ChangePercent
}
