// Package poller implements the polling scheduler.
//
// The scheduler:
//   - Runs one snapshot cycle immediately on start, then every Interval
//   - Bounds each cycle with its own timeout
//   - Hands every cycle result to a ResultHandler
//   - Drops ticks that fire while a cycle is still running
package poller
