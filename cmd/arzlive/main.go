// Command arzlive polls Iranian currency, gold and crypto prices, keeps a
// rolling price history and serves the normalized catalog.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
