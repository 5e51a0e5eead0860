package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint
// configuration. Returns nil if no override matches, in which case the
// default limit applies. Prefix patterns end with "/" (e.g. "/api/auth/"
// matches "/api/auth/login").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks are never limited
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Limit: 0}
	}

	// Exact match first
	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	// Then prefix match
	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") {
			if strings.HasPrefix(path, config.Path) {
				return config
			}
		}
	}

	return nil
}

// Class returns the bucket grouping key for a matched path: the configured
// pattern when one exists, otherwise the raw path. Requests hitting the same
// override share a bucket regardless of path parameters.
func (c *EndpointConfig) Class(path string) string {
	if c.Path != "" {
		return c.Path
	}
	return path
}
