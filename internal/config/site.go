package config

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing audit behavior per site.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when fetching pages on this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Render forces headless-browser rendering for this site, for pages
	// that assemble their content with JavaScript.
	Render bool `yaml:"render,omitempty"`

	// Keywords are the target search terms this site optimizes for.
	// When set, keyword analysis checks alignment against them in
	// addition to the page's own title and meta keywords.
	Keywords []string `yaml:"keywords,omitempty"`

	// MaxPriorityActions overrides the global priority list size.
	// If zero, the global value is used.
	MaxPriorityActions int `yaml:"maxPriorityActions,omitempty"`
}

// File represents the structure of the .seoscan configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys should be the bare host (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.Render {
			result.Render = true
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
		if len(siteConfig.Keywords) > 0 {
			result.Keywords = siteConfig.Keywords
		}
		if siteConfig.MaxPriorityActions != 0 {
			result.MaxPriorityActions = siteConfig.MaxPriorityActions
		}
	}

	return result
}
