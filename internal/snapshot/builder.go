package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/arzlive/arzlive/internal/api"
	"github.com/arzlive/arzlive/internal/history"
	"github.com/arzlive/arzlive/internal/market"
	"github.com/arzlive/arzlive/internal/match"
	"github.com/arzlive/arzlive/internal/model"
	"github.com/arzlive/arzlive/internal/normalize"
)

// User-facing cycle errors.
const (
	msgAllFeedsFailed  = "دریافت اطلاعات بازار ممکن نشد. آخرین قیمت‌های موجود نمایش داده می‌شود."
	msgSomeFeedsFailed = "بخشی از اطلاعات بازار به‌روزرسانی نشد"
)

// Fetcher fetches and decodes one upstream feed.
type Fetcher interface {
	GetFeed(ctx context.Context, f api.Feed) ([]api.Section, error)
}

// FeedError records a feed that failed outright in a cycle.
type FeedError struct {
	Feed string
	Err  error
}

func (e FeedError) Error() string {
	return fmt.Sprintf("feed %s: %v", e.Feed, e.Err)
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one poll cycle.
type Result struct {
	CycleID    string        `json:"cycle_id"`
	StartedAt  time.Time     `json:"started_at"`
	Assets     []model.Asset `json:"assets"`
	Updated    []string      `json:"updated"`
	FeedErrors []FeedError   `json:"-"`
	// Err is empty unless a configured feed failed.
	Err string `json:"error,omitempty"`
}

// Config holds builder configuration.
type Config struct {
	Feeds        []api.Feed
	FallbackRate decimal.Decimal // USD to Toman when no better rate exists
	Concurrency  int             // Max concurrent feed requests, 0 for no limit
}

// DefaultConfig returns the reference feeds and fallback rate.
func DefaultConfig() Config {
	return Config{
		Feeds: []api.Feed{
			{Name: "gold_currency", Path: "/Gold_Currency.php", Section: model.SectionMixed},
			{Name: "crypto", Path: "/Cryptocurrency.php", Section: model.SectionCrypto},
		},
		FallbackRate: decimal.NewFromInt(normalize.DefaultFallbackRate),
	}
}

// Builder runs poll cycles against a catalog and history store. Cycles are
// serialized; a cycle triggered while another runs waits for it.
type Builder struct {
	cfg     Config
	fetcher Fetcher
	matcher *match.Matcher
	norm    *normalize.Normalizer
	catalog *market.Catalog
	history *history.Store
	logger  *slog.Logger
	now     func() time.Time

	mu sync.Mutex

	lastMu sync.RWMutex
	last   *Result
}

// New creates a Builder. The matcher should include reference instruments
// so their rates are available to crypto conversion.
func New(cfg Config, fetcher Fetcher, matcher *match.Matcher, norm *normalize.Normalizer,
	catalog *market.Catalog, hist *history.Store, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.FallbackRate.IsPositive() {
		cfg.FallbackRate = decimal.NewFromInt(normalize.DefaultFallbackRate)
	}
	return &Builder{
		cfg:     cfg,
		fetcher: fetcher,
		matcher: matcher,
		norm:    norm,
		catalog: catalog,
		history: hist,
		logger:  logger,
		now:     time.Now,
	}
}

// Restore loads persisted history and aligns catalog prices with the last
// restored sample. A read error leaves backfilled history in place; the
// store then holds back writes until a later cycle manages to read it.
func (b *Builder) Restore(ctx context.Context) (history.RestoreReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var instruments []model.Instrument
	for _, inst := range b.matcher.Instruments() {
		if b.catalog.Has(inst.ID) {
			instruments = append(instruments, inst)
		}
	}

	report, err := b.history.Restore(ctx, instruments, b.now())
	b.syncCatalog(true)
	return report, err
}

// syncCatalog moves catalog prices to the newest history sample. Unless all
// is set, assets whose price already matches keep their source timestamp.
func (b *Builder) syncCatalog(all bool) {
	for _, id := range b.catalog.IDs() {
		p, ok := b.history.Last(id)
		if !ok {
			continue
		}
		if cur, _ := b.catalog.Price(id); all || cur != p.Price {
			b.catalog.SyncPrice(id, p)
		}
	}
}

// Latest returns the result of the last completed cycle, or the current
// catalog with an empty cycle id when no cycle has run yet.
func (b *Builder) Latest() Result {
	b.lastMu.RLock()
	last := b.last
	b.lastMu.RUnlock()

	if last != nil {
		return *last
	}
	return Result{
		StartedAt: b.now(),
		Assets:    b.catalog.Snapshot(b.history),
		Updated:   []string{},
	}
}

// PollOnce runs one full cycle. It never returns a nil catalog: on failure
// the previous values are returned together with Result.Err.
func (b *Builder) PollOnce(ctx context.Context) Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := b.now()
	res := Result{
		CycleID:   uuid.NewString(),
		StartedAt: start,
		Updated:   []string{},
	}
	logger := b.logger.With("cycle", res.CycleID)

	var fiat, crypto []api.Section
	for _, o := range b.fetchAll(ctx) {
		if o.err != nil {
			logger.Warn("feed failed", "feed", o.feed.Name, "err", o.err)
			res.FeedErrors = append(res.FeedErrors, FeedError{Feed: o.feed.Name, Err: o.err})
			continue
		}
		for _, s := range o.sections {
			if s.Skipped > 0 {
				logger.Debug("skipped undecodable records", "feed", o.feed.Name, "section", s.Kind, "count", s.Skipped)
			}
			if s.Kind.Fiat() {
				fiat = append(fiat, s)
			} else {
				crypto = append(crypto, s)
			}
		}
	}

	c := &cycle{
		b:      b,
		at:     start,
		logger: logger,
		rates:  make(map[string]decimal.Decimal),
	}
	for _, s := range fiat {
		c.applySection(s)
	}
	for _, s := range crypto {
		c.applySection(s)
	}
	res.Updated = append(res.Updated, c.updated...)

	if len(res.Updated) > 0 {
		synced := b.history.Synced()
		if err := b.history.PersistAll(ctx); err != nil {
			logger.Warn("failed to persist history", "err", err)
		}
		if !synced && b.history.Synced() {
			b.syncCatalog(false)
		}
	}

	res.Assets = b.catalog.Snapshot(b.history)
	res.Err = userError(len(b.cfg.Feeds), res.FeedErrors)

	logger.Info("poll cycle complete",
		"feeds", len(b.cfg.Feeds),
		"failed", len(res.FeedErrors),
		"updated", len(res.Updated),
		"duration", b.now().Sub(start),
	)

	b.lastMu.Lock()
	b.last = &res
	b.lastMu.Unlock()

	return res
}

type outcome struct {
	feed     api.Feed
	sections []api.Section
	err      error
}

// fetchAll requests every feed concurrently. Each outcome is independent;
// one failing feed does not cancel the others.
func (b *Builder) fetchAll(ctx context.Context) []outcome {
	out := make([]outcome, len(b.cfg.Feeds))

	var g errgroup.Group
	if b.cfg.Concurrency > 0 {
		g.SetLimit(b.cfg.Concurrency)
	}
	for i, f := range b.cfg.Feeds {
		g.Go(func() error {
			sections, err := b.fetcher.GetFeed(ctx, f)
			out[i] = outcome{feed: f, sections: sections, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func userError(feeds int, errs []FeedError) string {
	switch {
	case len(errs) == 0:
		return ""
	case len(errs) == feeds:
		return msgAllFeedsFailed
	}
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Feed
	}
	return fmt.Sprintf("%s (%s)", msgSomeFeedsFailed, strings.Join(names, ", "))
}
