// Package cli implements the owg-schedule command-line interface.
//
// The root command exposes three subcommands. scrape runs the full pipeline behind the
// cache gate and persists the artifacts. fallback prints the built-in schedule. normalize
// runs the extractor and normalizer over a saved HTML page for offline debugging.
package cli
