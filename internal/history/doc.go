// Package history keeps the bounded rolling price history per instrument.
//
// A sample is appended only when the price moved or MinInterval elapsed
// since the previous sample. Each series is capped at MaxPoints, oldest
// first. The whole map is persisted as one JSON snapshot under a single
// namespaced key and restored at startup with a retention filter; an
// instrument without persisted history gets a synthetic backfill so charts
// are never empty.
package history
