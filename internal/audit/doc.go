// Package audit provides content checks over crawled gopher holes.
//
// # Purpose
//
// This package analyzes the records collected by the crawler to identify
// privacy leaks and content hygiene issues a hole operator should know
// about: metadata embedded in published images, identity clues in text,
// and menu entries that point followers somewhere they might not expect.
//
// # Design Philosophy
//
// The audit package follows a modular analyzer pattern where each type of
// check is implemented as a separate Analyzer. This design was chosen because:
//  1. Each check type has unique logic and data requirements
//  2. Enables selective auditing based on configuration
//  3. Makes it easy to add new checks without modifying existing code
//  4. Simplifies testing of individual analysis components
//
// # Analyzer Categories
//
// Analyzers are grouped into categories based on what they detect:
//
// ## Identity Leaks
//   - Email addresses in menus and text files
//   - EXIF metadata in published images (GPS, camera, author tags)
//
// ## Correlation Risks
//   - External web links escaping gopherspace
//   - Onion service references in content
//
// ## Menu Hygiene
//   - Telnet session pointers
//   - Server error entries
//
// # Usage
//
//	analyzer := audit.NewAnalyzer()
//	findings, err := analyzer.Analyze(ctx, &audit.AnalysisData{
//		Target:  "gopher.example.org:70",
//		Records: report.Records,
//	})
//
// Severity, impact and recommendation text come from the central finding
// mapping in the model package, keyed by finding type.
package audit
