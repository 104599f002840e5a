package config

// SiteConfig holds per-host configuration for a single gopher server.
// This allows customizing fetch and crawl behavior per hole, most
// importantly the charset for legacy servers that never moved to UTF-8.
type SiteConfig struct {
	// Port overrides the port used when a target for this host omits one.
	// If zero, the gopher default (70) is used.
	Port int `yaml:"port,omitempty"`

	// Charset overrides the charset menus and text from this host are
	// decoded with. Supported values: utf-8, latin-1, cp437, windows-1252,
	// koi8-r. If empty, the global Charset is used.
	Charset string `yaml:"charset,omitempty"`

	// Depth overrides the global crawl depth for this host.
	// If zero, the global CrawlDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxItems overrides the global item cap for this host.
	// If zero, the global MaxItems is used.
	MaxItems int `yaml:"maxItems,omitempty"`

	// DelayMS overrides the crawl delay for this host, in milliseconds.
	// If zero, the global CrawlDelay is used.
	DelayMS int `yaml:"delayMs,omitempty"`

	// IgnorePatterns are selector patterns to skip during crawling.
	// Patterns are matched against the selector using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are selector patterns to follow during crawling.
	// If specified, only selectors matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .navfep-gopher configuration file.
type File struct {
	// Sites maps host names to their per-host configurations.
	// Keys are bare host names (e.g., "gopher.floodgap.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all hosts
	// unless overridden in the per-host configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the per-host configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with per-host configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Port != 0 {
			result.Port = siteConfig.Port
		}
		if siteConfig.Charset != "" {
			result.Charset = siteConfig.Charset
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxItems != 0 {
			result.MaxItems = siteConfig.MaxItems
		}
		if siteConfig.DelayMS != 0 {
			result.DelayMS = siteConfig.DelayMS
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
		if len(siteConfig.FollowPatterns) > 0 {
			result.FollowPatterns = siteConfig.FollowPatterns
		}
	}

	return result
}
