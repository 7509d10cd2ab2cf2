// Package config loads statcore settings from TOML with STATCORE_* environment
// overrides. Loading runs in three steps: Default fills every field, normalize
// applies the environment and cleans values, Validate rejects unusable ones.
package config
