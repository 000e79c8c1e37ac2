package snapshot

import (
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arzlive/arzlive/internal/api"
	"github.com/arzlive/arzlive/internal/market"
	"github.com/arzlive/arzlive/internal/match"
	"github.com/arzlive/arzlive/internal/model"
	"github.com/arzlive/arzlive/internal/normalize"
)

// cycle is the state of one PollOnce call.
type cycle struct {
	b      *Builder
	at     time.Time
	logger *slog.Logger

	// rates holds every price resolved this cycle, reference instruments
	// included, keyed by instrument id.
	rates   map[string]decimal.Decimal
	updated []string
}

func (c *cycle) applySection(sec api.Section) {
	recs := make([]match.Record, len(sec.Items))
	for i, it := range sec.Items {
		recs[i] = match.Record{Symbol: it.Symbol, Slug: it.Slug, Name: it.Name, NameEn: it.NameEn}
	}

	res := c.b.matcher.Resolve(recs, sec.Kind)
	slices.SortStableFunc(res, func(a, b match.Resolution) int {
		switch {
		case a.Instrument.Reference == b.Instrument.Reference:
			return 0
		case a.Instrument.Reference:
			return -1
		}
		return 1
	})

	for _, r := range res {
		c.apply(r.Instrument, sec.Items[r.Index], sec.Kind)
	}
}

func (c *cycle) apply(inst model.Instrument, item api.Item, kind model.Section) {
	price, rawPrice, unit, ok := c.price(inst, item, kind)
	if !ok {
		c.logger.Debug("item skipped", "id", inst.ID, "price", item.Price.String(), "price_toman", item.PriceToman.String())
		return
	}
	c.rates[inst.ID] = price

	if !c.b.catalog.Has(inst.ID) {
		return
	}

	pct, _ := normalize.ParseChange(item.Change().String())
	abs, ok := decimal.Zero, false
	if rawPrice != "" {
		abs, ok = c.b.norm.NormalizeDeltaIn(inst.Class, rawPrice, item.ChangeValue.String(), unit)
	}
	if !ok {
		abs = deriveChange(price, pct)
	}

	q := model.Quote{
		ID:             inst.ID,
		Price:          price.InexactFloat64(),
		ChangePercent:  pct,
		ChangeAbsolute: abs.InexactFloat64(),
		AsOf:           c.asOf(item),
		SourceDate:     item.Date,
		SourceTime:     item.Time,
	}
	// The catalog price must stay equal to the newest history point.
	if !c.b.history.Append(inst.ID, model.HistoryPoint{Timestamp: c.at, Price: q.Price}) {
		if last, ok := c.b.history.Last(inst.ID); ok && last.Price != q.Price {
			c.logger.Debug("quote behind history", "id", inst.ID, "last", last.Timestamp, "at", c.at)
			return
		}
	}
	if err := c.b.catalog.Apply(q); err != nil {
		c.logger.Debug("quote rejected", "id", inst.ID, "err", err)
		return
	}

	if !slices.Contains(c.updated, inst.ID) {
		c.updated = append(c.updated, inst.ID)
	}
}

// price resolves the Toman price of an item. rawPrice is the upstream field
// the price was read from, or empty when it was converted from another
// currency; unit is the unit that field was read in.
func (c *cycle) price(inst model.Instrument, item api.Item, kind model.Section) (decimal.Decimal, string, normalize.SourceUnit, bool) {
	none := normalize.UnitUnknown
	if kind.Fiat() {
		unit := normalize.ParseSourceUnit(item.Unit)
		v, ok := c.b.norm.NormalizeIn(inst.Class, item.Price.String(), unit)
		return v, item.Price.String(), unit, ok
	}

	if !item.PriceToman.Empty() {
		if v, ok := c.b.norm.Normalize(inst.Class, item.PriceToman.String()); ok {
			return v, item.PriceToman.String(), none, true
		}
	}
	if inst.Reference {
		return decimal.Zero, "", none, false
	}

	usd, ok := normalize.ParseNumber(item.Price.String())
	if !ok || !usd.IsPositive() {
		return decimal.Zero, "", none, false
	}
	toman, source, ok := c.rateChain().Convert(usd)
	if !ok {
		return decimal.Zero, "", none, false
	}
	c.logger.Debug("converted crypto price", "id", inst.ID, "rate", source)
	return c.b.norm.Scale(inst.Class, toman), "", none, true
}

// rateChain orders the USD to Toman rate sources: the stable asset and the
// dollar resolved this cycle, the last known dollar price, the fixed rate.
func (c *cycle) rateChain() normalize.RateChain {
	return normalize.RateChain{
		normalize.RateFunc{Label: "cycle_" + market.IDUSDT, Fn: c.rate(market.IDUSDT)},
		normalize.RateFunc{Label: "cycle_" + market.IDUSD, Fn: c.rate(market.IDUSD)},
		normalize.RateFunc{Label: "catalog_" + market.IDUSD, Fn: func() (decimal.Decimal, bool) {
			p, ok := c.b.catalog.Price(market.IDUSD)
			return decimal.NewFromFloat(p), ok
		}},
		normalize.FixedRate{Label: "fallback", Value: c.b.cfg.FallbackRate},
	}
}

func (c *cycle) rate(id string) func() (decimal.Decimal, bool) {
	return func() (decimal.Decimal, bool) {
		v, ok := c.rates[id]
		return v, ok
	}
}

// asOf prefers the upstream timestamp over the cycle time.
func (c *cycle) asOf(item api.Item) time.Time {
	if ts, ok := normalize.ParseNumber(item.TimeUnix.String()); ok && ts.IsPositive() {
		return time.Unix(ts.IntPart(), 0).UTC()
	}
	return c.at
}

// deriveChange computes the absolute 24h change from the current price and
// the percent change: price - price/(1+pct/100).
func deriveChange(price decimal.Decimal, pct float64) decimal.Decimal {
	base := decimal.NewFromFloat(1 + pct/100)
	if !base.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(price.Div(base)).Round(2)
}
