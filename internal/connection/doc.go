// Package connection implements a WebSocket subscriber for the catalog stream.
//
// The subscriber:
//   - Dials the server stream endpoint and timestamps every message
//   - Answers server pings and detects stale connections
//   - Reconnects with exponential backoff until its context is cancelled
package connection
