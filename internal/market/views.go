package market

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arzlive/arzlive/internal/fa"
	"github.com/arzlive/arzlive/internal/model"
	"github.com/arzlive/arzlive/internal/normalize"
)

// -----------------------------------------------------------------------------
// Display unit
// -----------------------------------------------------------------------------

// Unit is the display currency unit. Prices are stored in Toman; Rial is
// ten times finer.
type Unit string

const (
	UnitToman Unit = "TOMAN"
	UnitRial  Unit = "RIAL"
)

// ParseUnit parses a unit name; empty means Toman.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToUpper(strings.TrimSpace(s))); u {
	case "", UnitToman:
		return UnitToman, nil
	case UnitRial:
		return UnitRial, nil
	default:
		return "", fmt.Errorf("unknown unit %q", s)
	}
}

// Multiplier converts a Toman value into u.
func (u Unit) Multiplier() int64 {
	if u == UnitRial {
		return 10
	}
	return 1
}

func (u Unit) scale(v float64) float64 {
	return v * float64(u.Multiplier())
}

// -----------------------------------------------------------------------------
// Highlights
// -----------------------------------------------------------------------------

// Highlights are the summary cards shown above the catalog.
type Highlights struct {
	TopGainer *model.Asset `json:"top_gainer"`
	TopLoser  *model.Asset `json:"top_loser"`
	Gold      *model.Asset `json:"gold"`
}

// ComputeHighlights picks the largest and smallest 24h change and the gold
// reference asset. Ties keep catalog order. History is not included.
func ComputeHighlights(assets []model.Asset, goldID string) Highlights {
	var h Highlights
	if len(assets) == 0 {
		return h
	}

	sorted := slices.Clone(assets)
	slices.SortStableFunc(sorted, func(a, b model.Asset) int {
		return cmp.Compare(b.ChangePercent, a.ChangePercent)
	})

	h.TopGainer = summary(sorted[0])
	h.TopLoser = summary(sorted[len(sorted)-1])
	if g, err := Find(assets, goldID); err == nil {
		h.Gold = summary(g)
	}
	return h
}

func summary(a model.Asset) *model.Asset {
	a.History = nil
	return &a
}

// -----------------------------------------------------------------------------
// Chart
// -----------------------------------------------------------------------------

// Timeframe is a chart window.
type Timeframe string

const (
	Timeframe1D Timeframe = "1D"
	Timeframe1W Timeframe = "1W"
	Timeframe1M Timeframe = "1M"
)

// RecentPoints is the length of the newest-first history list.
const RecentPoints = 20

// ParseTimeframe parses a window name; empty means 1D.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToUpper(strings.TrimSpace(s))); tf {
	case "", Timeframe1D:
		return Timeframe1D, nil
	case Timeframe1W, Timeframe1M:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown range %q", s)
	}
}

// Duration is the lookback of the window.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Timeframe1W:
		return 7 * 24 * time.Hour
	case Timeframe1M:
		return 30 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// Stats summarizes the prices in a chart window.
type Stats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	// RangePercent is the current price position between Min and Max,
	// clamped to [0, 100]; 50 when the window is flat or empty.
	RangePercent float64 `json:"range_percent"`
}

// Chart is one asset's history window in a display unit.
type Chart struct {
	ID        string               `json:"id"`
	Timeframe Timeframe            `json:"range"`
	Unit      Unit                 `json:"unit"`
	Price     float64              `json:"price"`
	Change    float64              `json:"change_absolute"`
	Points    []model.HistoryPoint `json:"points"`
	Stats     Stats                `json:"stats"`
	Recent    []model.HistoryPoint `json:"recent"`
}

// BuildChart filters the asset history to the window ending at now and
// converts every price into unit.
func BuildChart(a model.Asset, tf Timeframe, unit Unit, now time.Time) Chart {
	cutoff := now.Add(-tf.Duration())

	c := Chart{
		ID:        a.ID,
		Timeframe: tf,
		Unit:      unit,
		Price:     unit.scale(a.Price),
		Change:    unit.scale(a.ChangeAbsolute),
		Points:    []model.HistoryPoint{},
		Recent:    []model.HistoryPoint{},
	}

	var sum float64
	for _, p := range a.History {
		if p.Timestamp.Before(cutoff) {
			continue
		}
		p.Price = unit.scale(p.Price)
		if len(c.Points) == 0 || p.Price < c.Stats.Min {
			c.Stats.Min = p.Price
		}
		if len(c.Points) == 0 || p.Price > c.Stats.Max {
			c.Stats.Max = p.Price
		}
		sum += p.Price
		c.Points = append(c.Points, p)
	}
	if n := len(c.Points); n > 0 {
		c.Stats.Avg = sum / float64(n)
	}

	c.Stats.RangePercent = 50
	if c.Stats.Max != c.Stats.Min {
		pct := (c.Price - c.Stats.Min) / (c.Stats.Max - c.Stats.Min) * 100
		c.Stats.RangePercent = math.Max(0, math.Min(100, pct))
	}

	for i := len(a.History) - 1; i >= 0 && len(c.Recent) < RecentPoints; i-- {
		p := a.History[i]
		p.Price = unit.scale(p.Price)
		c.Recent = append(c.Recent, p)
	}

	return c
}

// -----------------------------------------------------------------------------
// Calculator
// -----------------------------------------------------------------------------

// Conversion is the calculator result for an amount of one asset.
type Conversion struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Unit      Unit    `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	// TotalText is Total with Persian digits and grouping.
	TotalText string `json:"total_text"`
}

// Convert prices amount units of the asset in the display unit, rounded
// down to a whole unit. The amount may use Persian digits and separators.
func Convert(a model.Asset, rawAmount string, unit Unit) (Conversion, error) {
	amount, ok := normalize.ParseNumber(rawAmount)
	if !ok || amount.IsNegative() {
		return Conversion{}, fmt.Errorf("invalid amount %q", rawAmount)
	}

	price := decimal.NewFromFloat(a.Price).Mul(decimal.NewFromInt(unit.Multiplier()))
	total := amount.Mul(price).Floor()

	return Conversion{
		ID:        a.ID,
		Amount:    amount.InexactFloat64(),
		Unit:      unit,
		UnitPrice: price.InexactFloat64(),
		Total:     total.InexactFloat64(),
		TotalText: fa.FormatNumber(total.InexactFloat64()),
	}, nil
}
