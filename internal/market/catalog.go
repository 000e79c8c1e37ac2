package market

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/arzlive/arzlive/internal/model"
)

// ErrUnknownAsset is returned for an id that is not in the catalog.
var ErrUnknownAsset = errors.New("unknown asset")

// HistorySource supplies the retained history of an instrument.
type HistorySource interface {
	Load(id string) []model.HistoryPoint
}

// Catalog holds one Asset per tracked instrument. Reference instruments are
// not part of it. Ids are fixed at construction.
type Catalog struct {
	mu     sync.RWMutex
	order  []string
	assets map[string]*model.Asset
}

// NewCatalog seeds the catalog with the instruments' seed prices.
func NewCatalog(instruments []model.Instrument, now time.Time) *Catalog {
	c := &Catalog{assets: make(map[string]*model.Asset, len(instruments))}
	for _, inst := range instruments {
		if inst.Reference {
			continue
		}
		if _, dup := c.assets[inst.ID]; dup {
			continue
		}
		c.order = append(c.order, inst.ID)
		c.assets[inst.ID] = &model.Asset{
			ID:       inst.ID,
			NameFa:   inst.NameFa,
			NameEn:   inst.NameEn,
			Category: inst.Category,
			Class:    inst.Class,
			Price:    inst.SeedPrice,
			AsOf:     now,
		}
	}
	return c
}

// IDs returns the catalog ids in catalog order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.order)
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.assets[id]
	return ok
}

// Price returns the current price of id.
func (c *Catalog) Price(id string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.assets[id]
	if !ok {
		return 0, false
	}
	return a.Price, true
}

// Apply overwrites the scalar fields of the quoted asset.
func (c *Catalog) Apply(q model.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.assets[q.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, q.ID)
	}
	a.Price = q.Price
	a.ChangePercent = q.ChangePercent
	a.ChangeAbsolute = q.ChangeAbsolute
	a.AsOf = q.AsOf
	a.SourceDate = q.SourceDate
	a.SourceTime = q.SourceTime
	return nil
}

// SyncPrice sets the price of id to the last history point, so a restored
// history and the displayed price agree at startup.
func (c *Catalog) SyncPrice(id string, last model.HistoryPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.assets[id]; ok && last.Price > 0 {
		a.Price = last.Price
		a.AsOf = last.Timestamp
	}
}

// Snapshot returns deep copies of all assets in catalog order, with history
// from h attached. h may be nil.
func (c *Catalog) Snapshot(h HistorySource) []model.Asset {
	c.mu.RLock()
	out := make([]model.Asset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.assets[id])
	}
	c.mu.RUnlock()

	for i := range out {
		if h != nil {
			out[i].History = h.Load(out[i].ID)
		}
		if out[i].History == nil {
			out[i].History = []model.HistoryPoint{}
		}
	}
	return out
}

// Find returns the asset with id from a snapshot.
func Find(assets []model.Asset, id string) (model.Asset, error) {
	for _, a := range assets {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, id)
}

// Filter returns the assets of category cat; an empty category keeps all.
func Filter(assets []model.Asset, cat model.Category) []model.Asset {
	if cat == "" {
		return assets
	}
	out := make([]model.Asset, 0, len(assets))
	for _, a := range assets {
		if a.Category == cat {
			out = append(out, a)
		}
	}
	return out
}
