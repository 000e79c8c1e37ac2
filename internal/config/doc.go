// Package config loads the arzlive YAML configuration.
//
// Values are read from a YAML file with ${VAR} expansion, then selected
// fields are overridden from ARZLIVE_* environment variables (for example
// ARZLIVE_FEED_API_KEY or ARZLIVE_STORAGE_DRIVER), then defaults are applied
// and the result is validated.
package config
