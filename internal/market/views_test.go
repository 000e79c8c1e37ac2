package market

import (
	"testing"
	"time"

	"github.com/arzlive/arzlive/internal/model"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"", UnitToman, false},
		{"toman", UnitToman, false},
		{"RIAL", UnitRial, false},
		{" rial ", UnitRial, false},
		{"usd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnit(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseUnit(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestComputeHighlights(t *testing.T) {
	assets := []model.Asset{
		{ID: IDUSD, ChangePercent: 0.5, History: []model.HistoryPoint{{Price: 1}}},
		{ID: IDEUR, ChangePercent: -1.2},
		{ID: IDGold18, ChangePercent: 0},
		{ID: IDBTC, ChangePercent: 3},
	}

	h := ComputeHighlights(assets, IDGold18)
	if h.TopGainer == nil || h.TopGainer.ID != IDBTC {
		t.Errorf("TopGainer = %+v, want btc", h.TopGainer)
	}
	if h.TopLoser == nil || h.TopLoser.ID != IDEUR {
		t.Errorf("TopLoser = %+v, want eur", h.TopLoser)
	}
	if h.Gold == nil || h.Gold.ID != IDGold18 {
		t.Errorf("Gold = %+v, want gold_18", h.Gold)
	}

	if assets[0].History == nil {
		t.Error("input history was cleared")
	}
	if assets[0].ID != IDUSD {
		t.Error("input order changed")
	}
}

func TestComputeHighlights_Ties(t *testing.T) {
	assets := []model.Asset{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	h := ComputeHighlights(assets, "gold")
	if h.TopGainer.ID != "a" || h.TopLoser.ID != "c" {
		t.Errorf("gainer/loser = %s/%s, want a/c", h.TopGainer.ID, h.TopLoser.ID)
	}
	if h.Gold != nil {
		t.Errorf("Gold = %+v, want nil", h.Gold)
	}
}

func TestComputeHighlights_Empty(t *testing.T) {
	h := ComputeHighlights(nil, IDGold18)
	if h.TopGainer != nil || h.TopLoser != nil || h.Gold != nil {
		t.Errorf("ComputeHighlights(nil) = %+v, want all nil", h)
	}
}

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in      string
		want    Timeframe
		dur     time.Duration
		wantErr bool
	}{
		{"", Timeframe1D, 24 * time.Hour, false},
		{"1d", Timeframe1D, 24 * time.Hour, false},
		{"1W", Timeframe1W, 7 * 24 * time.Hour, false},
		{"1M", Timeframe1M, 30 * 24 * time.Hour, false},
		{"1Y", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeframe(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeframe(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTimeframe(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !tt.wantErr && got.Duration() != tt.dur {
				t.Errorf("Duration() = %v, want %v", got.Duration(), tt.dur)
			}
		})
	}
}

func chartAsset() model.Asset {
	return model.Asset{
		ID:             IDUSD,
		Price:          105,
		ChangeAbsolute: 5,
		History: []model.HistoryPoint{
			{Timestamp: t0.Add(-48 * time.Hour), Price: 100},
			{Timestamp: t0.Add(-2 * time.Hour), Price: 90},
			{Timestamp: t0.Add(-time.Hour), Price: 110},
			{Timestamp: t0, Price: 105},
		},
	}
}

func TestBuildChart(t *testing.T) {
	tests := []struct {
		name   string
		tf     Timeframe
		unit   Unit
		points int
		stats  Stats
		price  float64
	}{
		{"1D toman", Timeframe1D, UnitToman, 3, Stats{Min: 90, Max: 110, Avg: 305.0 / 3, RangePercent: 75}, 105},
		{"1D rial", Timeframe1D, UnitRial, 3, Stats{Min: 900, Max: 1100, Avg: 3050.0 / 3, RangePercent: 75}, 1050},
		{"1W toman", Timeframe1W, UnitToman, 4, Stats{Min: 90, Max: 110, Avg: 101.25, RangePercent: 75}, 105},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := BuildChart(chartAsset(), tt.tf, tt.unit, t0)

			if len(c.Points) != tt.points {
				t.Fatalf("len(Points) = %d, want %d", len(c.Points), tt.points)
			}
			if c.Stats != tt.stats {
				t.Errorf("Stats = %+v, want %+v", c.Stats, tt.stats)
			}
			if c.Price != tt.price {
				t.Errorf("Price = %v, want %v", c.Price, tt.price)
			}
			if len(c.Recent) != 4 || !c.Recent[0].Timestamp.Equal(t0) {
				t.Errorf("Recent = %v, want 4 points newest first", c.Recent)
			}
		})
	}
}

func TestBuildChart_DoesNotMutateAsset(t *testing.T) {
	a := chartAsset()
	BuildChart(a, Timeframe1M, UnitRial, t0)

	if a.History[0].Price != 100 {
		t.Errorf("history price = %v, want 100", a.History[0].Price)
	}
}

func TestBuildChart_RangePercent(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		history []model.HistoryPoint
		want    float64
	}{
		{"empty", 100, nil, 50},
		{"flat", 100, []model.HistoryPoint{{Timestamp: t0, Price: 100}, {Timestamp: t0, Price: 100}}, 50},
		{"above max", 200, []model.HistoryPoint{{Timestamp: t0, Price: 90}, {Timestamp: t0, Price: 110}}, 100},
		{"below min", 10, []model.HistoryPoint{{Timestamp: t0, Price: 90}, {Timestamp: t0, Price: 110}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := model.Asset{ID: "x", Price: tt.price, History: tt.history}
			c := BuildChart(a, Timeframe1D, UnitToman, t0)
			if c.Stats.RangePercent != tt.want {
				t.Errorf("RangePercent = %v, want %v", c.Stats.RangePercent, tt.want)
			}
		})
	}
}

func TestBuildChart_Recent(t *testing.T) {
	a := model.Asset{ID: "x", Price: 1}
	for i := range 25 {
		a.History = append(a.History, model.HistoryPoint{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Price:     float64(i + 1),
		})
	}

	c := BuildChart(a, Timeframe1D, UnitToman, t0.Add(time.Hour))
	if len(c.Recent) != RecentPoints {
		t.Fatalf("len(Recent) = %d, want %d", len(c.Recent), RecentPoints)
	}
	if c.Recent[0].Price != 25 || c.Recent[RecentPoints-1].Price != 6 {
		t.Errorf("Recent = %v .. %v, want 25 .. 6", c.Recent[0].Price, c.Recent[RecentPoints-1].Price)
	}
}

func TestConvert(t *testing.T) {
	usd := model.Asset{ID: IDUSD, Price: 70150}

	tests := []struct {
		name    string
		amount  string
		unit    Unit
		want    float64
		wantErr bool
	}{
		{"one toman", "1", UnitToman, 70150, false},
		{"fraction floors", "0.333", UnitToman, 23359, false},
		{"persian digits", "۲٫۵", UnitToman, 175375, false},
		{"separators rial", "1,000", UnitRial, 701500000, false},
		{"zero", "0", UnitToman, 0, false},
		{"negative", "-1", UnitToman, 0, true},
		{"garbage", "abc", UnitToman, 0, true},
		{"empty", "", UnitToman, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(usd, tt.amount, tt.unit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Convert(%q) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Total != tt.want {
				t.Errorf("Convert(%q).Total = %v, want %v", tt.amount, got.Total, tt.want)
			}
			if got.Unit != tt.unit {
				t.Errorf("Unit = %q, want %q", got.Unit, tt.unit)
			}
		})
	}
}
