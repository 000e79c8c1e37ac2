package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/arzlive/arzlive/internal/model"
)

// Defaults.
const (
	DefaultMinInterval    = 60 * time.Second
	DefaultMaxPoints      = 500
	DefaultRetention      = 30 * 24 * time.Hour
	DefaultBackfillPoints = 100
	DefaultBackfillWindow = 30 * 24 * time.Hour
	DefaultBackfillJitter = 0.05
	DefaultKey            = "arzlive:history"
)

// ErrNotSynced is returned by PersistAll while the persisted snapshot has
// never been read successfully, so writing would replace it blindly.
var ErrNotSynced = errors.New("history snapshot not read yet")

// Backend is the durable key/value store the snapshot is written to.
// Get returns nil data and a nil error when the key is absent.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Config holds History Store configuration.
type Config struct {
	MinInterval    time.Duration
	MaxPoints      int
	Retention      time.Duration
	BackfillPoints int
	BackfillWindow time.Duration
	BackfillJitter float64
	Key            string
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		MinInterval:    DefaultMinInterval,
		MaxPoints:      DefaultMaxPoints,
		Retention:      DefaultRetention,
		BackfillPoints: DefaultBackfillPoints,
		BackfillWindow: DefaultBackfillWindow,
		BackfillJitter: DefaultBackfillJitter,
		Key:            DefaultKey,
	}
}

// RestoreReport lists which instruments were restored and which backfilled.
type RestoreReport struct {
	Restored   []string
	Backfilled []string
}

// Store holds the per-instrument series. It is safe for concurrent use.
type Store struct {
	cfg     Config
	backend Backend
	gen     Generator
	logger  *slog.Logger

	mu     sync.RWMutex
	series map[string][]model.HistoryPoint

	// synced is false after a Restore whose read failed; pending then
	// collects the live samples appended since.
	synced     bool
	restoredAt time.Time
	pending    map[string][]model.HistoryPoint
}

// NewStore creates an empty store. gen may be nil for a time-seeded generator.
func NewStore(cfg Config, backend Backend, gen Generator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = NewGenerator(0)
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}

	return &Store{
		cfg:     cfg,
		backend: backend,
		gen:     gen,
		logger:  logger,
		series:  make(map[string][]model.HistoryPoint),
		synced:  true,
	}
}

// Synced reports whether the persisted snapshot has been read, so that
// PersistAll may overwrite it.
func (s *Store) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synced
}

// Config returns the store configuration.
func (s *Store) Config() Config {
	return s.cfg
}

// Append adds p to the series of id if it is significant and reports whether
// it was stored. Points older than the last sample are rejected.
func (s *Store) Append(id string, p model.HistoryPoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pts := s.series[id]
	if n := len(pts); n > 0 {
		last := pts[n-1]
		if p.Timestamp.Before(last.Timestamp) {
			return false
		}
		if p.Price == last.Price && p.Timestamp.Sub(last.Timestamp) < s.cfg.MinInterval {
			return false
		}
	}

	pts = append(pts, p)
	if s.cfg.MaxPoints > 0 && len(pts) > s.cfg.MaxPoints {
		pts = slices.Delete(pts, 0, len(pts)-s.cfg.MaxPoints)
	}
	s.series[id] = pts
	if !s.synced {
		s.pending[id] = append(s.pending[id], p)
	}
	return true
}

// Load returns a copy of the series for id.
func (s *Store) Load(id string) []model.HistoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.series[id])
}

// Last returns the most recent sample for id.
func (s *Store) Last(id string) (model.HistoryPoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pts := s.series[id]
	if len(pts) == 0 {
		return model.HistoryPoint{}, false
	}
	return pts[len(pts)-1], true
}

// Snapshot returns a deep copy of every series.
func (s *Store) Snapshot() map[string][]model.HistoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]model.HistoryPoint, len(s.series))
	for id, pts := range s.series {
		out[id] = slices.Clone(pts)
	}
	return out
}

// Restore replaces the in-memory state with the persisted snapshot for the
// given instruments. Persisted points outside the retention window or after
// now are dropped and the rest sorted ascending. Instruments with nothing
// persisted are backfilled around their seed price. A missing or corrupt
// snapshot is treated as empty.
//
// When the backend cannot be read the instruments are backfilled as well,
// the read error is returned, and PersistAll refuses to write until a later
// read succeeds.
func (s *Store) Restore(ctx context.Context, instruments []model.Instrument, now time.Time) (RestoreReport, error) {
	persisted, readErr := s.read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	var report RestoreReport
	s.series = make(map[string][]model.HistoryPoint, len(instruments))
	s.synced = readErr == nil
	s.restoredAt = now
	s.pending = make(map[string][]model.HistoryPoint)
	for _, inst := range instruments {
		kept := s.retained(persisted[inst.ID], now)
		if len(kept) > 0 {
			s.series[inst.ID] = kept
			report.Restored = append(report.Restored, inst.ID)
			continue
		}

		s.series[inst.ID] = Backfill(s.gen, inst.SeedPrice, now, s.cfg.BackfillPoints, s.cfg.BackfillWindow, s.cfg.BackfillJitter)
		report.Backfilled = append(report.Backfilled, inst.ID)
	}

	s.logger.Info("history restored",
		"restored", len(report.Restored),
		"backfilled", len(report.Backfilled),
		"synced", s.synced,
	)

	return report, readErr
}

// retained filters persisted points to [now-Retention, now], positive
// prices only, sorted ascending.
func (s *Store) retained(pts []model.HistoryPoint, now time.Time) []model.HistoryPoint {
	cutoff := now.Add(-s.cfg.Retention)
	var kept []model.HistoryPoint
	for _, p := range pts {
		if p.Price > 0 && !p.Timestamp.Before(cutoff) && !p.Timestamp.After(now) {
			kept = append(kept, p)
		}
	}
	slices.SortStableFunc(kept, func(a, b model.HistoryPoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return kept
}

// read loads the persisted snapshot. Absent and corrupt data read as empty;
// only a backend failure is an error.
func (s *Store) read(ctx context.Context) (map[string][]model.HistoryPoint, error) {
	if s.backend == nil {
		return nil, nil
	}
	data, err := s.backend.Get(ctx, s.cfg.Key)
	if err != nil {
		s.logger.Warn("failed to read history snapshot", "key", s.cfg.Key, "err", err)
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	m, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding corrupt history snapshot", "key", s.cfg.Key, "err", err)
		return nil, nil
	}
	return m, nil
}

// resync retries the read after a failed Restore. Persisted series replace
// the backfill; samples appended since Restore are kept on top of them.
func (s *Store) resync(ctx context.Context) error {
	persisted, err := s.read(ctx)
	if err != nil {
		return errors.Join(ErrNotSynced, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.series {
		kept := s.retained(persisted[id], s.restoredAt)
		if len(kept) == 0 {
			continue
		}
		last := kept[len(kept)-1].Timestamp
		for _, p := range s.pending[id] {
			if !p.Timestamp.Before(last) {
				kept = append(kept, p)
			}
		}
		s.series[id] = kept
	}
	s.synced = true
	s.pending = nil
	s.logger.Info("history snapshot read after earlier failure", "key", s.cfg.Key)
	return nil
}

// PersistAll trims every series to the cap and writes the whole map as one
// snapshot. The in-memory state is kept whether or not the write succeeds.
// After a failed Restore it first retries the read and returns ErrNotSynced
// without writing while the backend stays unreadable.
func (s *Store) PersistAll(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	if !s.Synced() {
		if err := s.resync(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if s.cfg.MaxPoints > 0 {
		for id, pts := range s.series {
			if len(pts) > s.cfg.MaxPoints {
				s.series[id] = slices.Delete(pts, 0, len(pts)-s.cfg.MaxPoints)
			}
		}
	}
	data, err := json.Marshal(s.series)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := s.backend.Put(ctx, s.cfg.Key, data); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// Decode parses a persisted snapshot.
func Decode(data []byte) (map[string][]model.HistoryPoint, error) {
	var m map[string][]model.HistoryPoint
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return m, nil
}

// Read loads the persisted snapshot stored under key without filtering.
func Read(ctx context.Context, backend Backend, key string) (map[string][]model.HistoryPoint, error) {
	data, err := backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return map[string][]model.HistoryPoint{}, nil
	}
	return Decode(data)
}
