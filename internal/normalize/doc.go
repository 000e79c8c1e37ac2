// Package normalize implements the Unit Normalizer.
//
// Upstream values arrive either in Toman or in Rial (ten times finer) with no
// unit marker. The normalizer decides per instrument class by magnitude: a
// value above the class threshold is taken to be Rial and divided by 10.
// Thresholds are configuration (see Thresholds), calibrated against the
// real-world order of magnitude of each class:
//
//   - currency:  200,000       (USD is roughly 70,000 Toman)
//   - gold_gram: 10,000,000    (18k gram is roughly 4,500,000 Toman)
//   - gold_coin: 100,000,000   (Emami coin is roughly 53,000,000 Toman)
//   - crypto:    20,000,000,000
//
// Crypto records priced in USD are converted with a RateChain, an ordered
// list of rate providers evaluated until one yields a value.
package normalize
