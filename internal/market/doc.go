// Package market owns the catalog of tracked assets and the read-side views
// built from it: highlights, chart windows, the price calculator and the
// plain-text digest handed to the AI summary service.
//
// The Catalog is the single mutable copy of the scalar asset fields. It is
// owned by the snapshot builder; everyone else works on the deep copies
// returned by Snapshot.
package market
