package api

import (
	"encoding/json"
	"testing"

	"github.com/arzlive/arzlive/internal/model"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Number
	}{
		{`705000`, "705000"},
		{`92000.5`, "92000.5"},
		{`-0.75`, "-0.75"},
		{`"705,000"`, "705,000"},
		{`" 1,234 "`, "1,234"},
		{`""`, ""},
		{`null`, ""},
		{`true`, ""},
		{`{"a":1}`, ""},
	}

	for _, tt := range tests {
		var n Number
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.in, err)
			continue
		}
		if n != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, n, tt.want)
		}
	}
}

func TestItem_Change(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want Number
	}{
		{"24h preferred", Item{PercentChange24h: "1.5", ChangePercent: "0.5"}, "1.5"},
		{"falls back", Item{ChangePercent: "0.5"}, "0.5"},
		{"none", Item{}, ""},
	}
	for _, tt := range tests {
		if got := tt.item.Change(); got != tt.want {
			t.Errorf("%s: Change() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		def       model.Section
		wantKinds []model.Section
		wantItems []int
		wantSkip  int
	}{
		{
			name:      "bare array",
			body:      `[{"slug":"usd","price":705000},{"slug":"eur","price":"764,000"}]`,
			def:       model.SectionMixed,
			wantKinds: []model.Section{model.SectionMixed},
			wantItems: []int{2},
		},
		{
			name:      "data envelope",
			body:      `{"data":[{"symbol":"BTC","price":92000}]}`,
			def:       model.SectionCrypto,
			wantKinds: []model.Section{model.SectionCrypto},
			wantItems: []int{1},
		},
		{
			name:      "data envelope with categories",
			body:      `{"data":{"gold":[{"symbol":"IR_GOLD_18K"}]}}`,
			def:       model.SectionMixed,
			wantKinds: []model.Section{model.SectionGold},
			wantItems: []int{1},
		},
		{
			name:      "per-category arrays",
			body:      `{"gold":[{"name":"طلای ۱۸ عیار"}],"currency":[{"symbol":"USD"},{"symbol":"EUR"}],"cryptocurrency":[{"symbol":"BTC"}]}`,
			def:       model.SectionMixed,
			wantKinds: []model.Section{model.SectionCurrency, model.SectionGold, model.SectionCrypto},
			wantItems: []int{2, 1, 1},
		},
		{
			name:      "bad record skipped",
			body:      `[{"symbol":"USD"},{"symbol":42},"junk"]`,
			def:       model.SectionCurrency,
			wantKinds: []model.Section{model.SectionCurrency},
			wantItems: []int{1},
			wantSkip:  2,
		},
		{
			name: "unknown object",
			body: `{"status":"ok"}`,
			def:  model.SectionMixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.body), tt.def)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if len(got) != len(tt.wantKinds) {
				t.Fatalf("len(sections) = %d, want %d: %+v", len(got), len(tt.wantKinds), got)
			}
			skipped := 0
			for i, s := range got {
				if s.Kind != tt.wantKinds[i] {
					t.Errorf("section %d kind = %s, want %s", i, s.Kind, tt.wantKinds[i])
				}
				if len(s.Items) != tt.wantItems[i] {
					t.Errorf("section %d items = %d, want %d", i, len(s.Items), tt.wantItems[i])
				}
				skipped += s.Skipped
			}
			if skipped != tt.wantSkip {
				t.Errorf("skipped = %d, want %d", skipped, tt.wantSkip)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, body := range []string{``, `   `, `<html>`, `"text"`, `{"currency": [1, 2`, `[1, 2`} {
		if _, err := Decode([]byte(body), model.SectionMixed); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", body)
		}
	}
}

func TestDecode_Fields(t *testing.T) {
	body := `[{"symbol":"BTC","slug":"bitcoin","name":"بیت کوین","name_en":"Bitcoin","price":92000,"price_toman":"6,454,000,000","percent_change_24h":-1.2,"change_value":"-1100","date":"1404/08/27","time":"12:30","time_unix":1763371800}]`

	got, err := Decode([]byte(body), model.SectionCrypto)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	it := got[0].Items[0]

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Symbol", it.Symbol, "BTC"},
		{"Slug", it.Slug, "bitcoin"},
		{"NameEn", it.NameEn, "Bitcoin"},
		{"Price", it.Price.String(), "92000"},
		{"PriceToman", it.PriceToman.String(), "6,454,000,000"},
		{"Change", it.Change().String(), "-1.2"},
		{"ChangeValue", it.ChangeValue.String(), "-1100"},
		{"Date", it.Date, "1404/08/27"},
		{"Time", it.Time, "12:30"},
		{"TimeUnix", it.TimeUnix.String(), "1763371800"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}
