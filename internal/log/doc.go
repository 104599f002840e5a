// Package log provides privacy-preserving logging functionality built on
// top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of search queries embedded in gopher selectors
//   - Length caps on server-controlled selector and URL attributes
//   - Masking of credentials (SOCKS proxy auth, Tor control passwords)
//   - Configurable log levels with verbose mode support
//   - Compatibility with tornago's slog-based logging
//
// # Privacy Features
//
// The RedactingHandler automatically redacts log output:
//   - Type-7 search selectors carry the user's query terms after a TAB;
//     everything after the first TAB in a selector or URL attribute is masked
//   - Selector and URL attributes are capped so a hostile menu cannot
//     flood the logs
//   - Secret values detected by key name or pattern matching (passwords,
//     private key material) are masked entirely
//
// Even in verbose mode, queries and secrets are masked to prevent
// accidental exposure in logs that may be shared or stored.
//
// # Usage
//
//	// Create a redacting logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("request sent",
//	    "selector", "/7/search\tsecret query",  // query will be masked
//	    "host", "gopher.floodgap.com",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
//
// # Integration with tornago
//
// The RedactingHandler is compatible with tornago's slog integration:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	// Use with tornago components that accept *slog.Logger
package log
