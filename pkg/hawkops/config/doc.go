// Package config loads and persists the hawkops YAML configuration: API base
// URL and key, cached tokens, and CLI settings.
package config
