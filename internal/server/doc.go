// Package server exposes the market catalog over HTTP and WebSocket.
//
// Routes:
//
//	GET  /health
//	GET  /api/v1/assets[?category=]
//	GET  /api/v1/assets/{id}
//	GET  /api/v1/assets/{id}/chart?range=1D|1W|1M&unit=TOMAN|RIAL
//	GET  /api/v1/assets/{id}/convert?amount=&unit=
//	GET  /api/v1/highlights
//	GET  /api/v1/digest
//	POST /api/v1/refresh
//	GET  /ws
//
// Every completed poll cycle is pushed to WebSocket subscribers.
package server
