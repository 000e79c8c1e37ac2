package history

import (
	"math/rand/v2"
	"time"

	"github.com/arzlive/arzlive/internal/model"
)

// Generator is the randomness source for synthetic backfill.
// *rand.Rand satisfies it.
type Generator interface {
	Float64() float64
}

// NewGenerator returns a deterministic PCG generator for seed, or a
// time-seeded one when seed is zero.
func NewGenerator(seed uint64) Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Backfill synthesizes count points spread evenly over window ending just
// before now, each within seed*(1±jitter), followed by one point at the seed
// price at now.
func Backfill(gen Generator, seed float64, now time.Time, count int, window time.Duration, jitter float64) []model.HistoryPoint {
	out := make([]model.HistoryPoint, 0, max(count, 0)+1)
	if count > 0 {
		step := window / time.Duration(count)
		for i := count; i > 0; i-- {
			factor := 1 + (gen.Float64()*2-1)*jitter
			out = append(out, model.HistoryPoint{
				Timestamp: now.Add(-time.Duration(i) * step),
				Price:     seed * factor,
			})
		}
	}
	return append(out, model.HistoryPoint{Timestamp: now, Price: seed})
}
