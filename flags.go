package main

import (
	"github.com/spf13/pflag"

	"github.com/datawire/webassay/pkg/assay"
	"github.com/datawire/webassay/pkg/config"
	"github.com/datawire/webassay/pkg/pypi"
	"github.com/datawire/webassay/pkg/webassets"
)

// indexFlags are the flags shared by every command that downloads packages.
type indexFlags struct {
	indexServer string
	simpleIndex string
	extensions  []string
}

func (f *indexFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.indexServer, "index-server", pypi.PyPIBaseURL,
		"Base URL of the package index's JSON API")
	flags.StringVar(&f.simpleIndex, "simple-index", "",
		"Download from a PEP 503 \"simple\" index at this base URL instead of the JSON API")
	flags.StringSliceVar(&f.extensions, "extensions", webassets.DefaultExtensions,
		"File extensions that count as web assets")
}

// apply folds flag values into a config; flags win where the user set them.
func (f *indexFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("index-server") {
		cfg.IndexURL = f.indexServer
	}
	if flags.Changed("simple-index") {
		cfg.SimpleIndexURL = f.simpleIndex
	}
	if flags.Changed("extensions") {
		cfg.Extensions = f.extensions
	}
}

func newAssayer(cfg config.Config) assay.Assayer {
	assayer := assay.Assayer{
		JSON:       pypi.Client{BaseURL: cfg.IndexURL},
		Classifier: webassets.NewClassifier(cfg.Extensions),
	}
	if cfg.SimpleIndexURL != "" {
		assayer.Simple = &pypi.SimpleClient{BaseURL: cfg.SimpleIndexURL}
	}
	return assayer
}

// assayer builds an Assayer straight from flags, for the commands that don't
// take a config file.
func (f *indexFlags) assayer() assay.Assayer {
	return assay.Assayer{
		JSON:       pypi.Client{BaseURL: f.indexServer},
		Simple:     simpleClient(f.simpleIndex),
		Classifier: webassets.NewClassifier(f.extensions),
	}
}

func simpleClient(baseURL string) *pypi.SimpleClient {
	if baseURL == "" {
		return nil
	}
	return &pypi.SimpleClient{BaseURL: baseURL}
}
