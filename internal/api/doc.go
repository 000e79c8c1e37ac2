// Package api provides the client for the upstream market-data API.
//
// The reference deployment reads two feeds from https://brsapi.ir/Api/Market:
//   - /Gold_Currency.php: currency and gold items in one list
//   - /Cryptocurrency.php: crypto items, prices in USD with an optional Toman field
//
// The API key is passed as the "key" query parameter. Responses are either a
// bare array, an object wrapping the array under "data", or an object with
// per-category arrays ("currency", "gold", "cryptocurrency"). Numeric fields
// may be JSON numbers or strings with thousands separators.
package api
