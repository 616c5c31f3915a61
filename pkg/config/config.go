// Package config loads webassay's optional YAML configuration file.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/datawire/webassay/pkg/pypi"
	"github.com/datawire/webassay/pkg/webassets"
)

// Config holds the settings shared by the analyze/report/serve commands.
// Flags override anything set here.
type Config struct {
	// IndexURL is the base URL of the JSON package index API.
	IndexURL string `json:"indexURL,omitempty"`
	// SimpleIndexURL, when set, switches downloads to a PEP 503 simple
	// index at this base URL.
	SimpleIndexURL string `json:"simpleIndexURL,omitempty"`
	// ListenAddr is the address "webassay serve" binds.
	ListenAddr string `json:"listenAddr,omitempty"`
	// Extensions replaces the default web-asset extension set.
	Extensions []string `json:"extensions,omitempty"`
	// DefaultPackages seeds the web UI's package form.
	DefaultPackages []string `json:"defaultPackages,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IndexURL:   pypi.PyPIBaseURL,
		ListenAddr: ":8080",
		Extensions: webassets.DefaultExtensions,
	}
}

// Load reads and strictly parses a config file; unknown keys are errors, so
// typos don't silently do nothing.  An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(content, &cfg, yaml.DisallowUnknownFields); err != nil {
		return Config{}, fmt.Errorf("config file %q: %w", path, err)
	}
	if cfg.IndexURL == "" {
		cfg.IndexURL = pypi.PyPIBaseURL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.Extensions == nil {
		cfg.Extensions = webassets.DefaultExtensions
	}
	return cfg, nil
}
