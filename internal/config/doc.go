// Package config provides configuration structures and utilities for the
// gopher client. It defines the main configuration options for fetching
// and rendering, crawl settings, per-host overrides, and report
// generation preferences.
package config
