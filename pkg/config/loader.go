// Package config loads pricing Options from a YAML file. There is no
// apiserver to submit a manifest to here, so sigs.k8s.io/yaml is used
// directly as a decoder against a plain Go struct.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	v1alpha1 "github.com/scipgcg/pricing/pkg/api/v1alpha1"
)

// Load reads and parses a pricing Options document from path, applies
// defaults for any unset field, and validates the result.
func Load(path string) (*v1alpha1.Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var opts v1alpha1.Options
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	v1alpha1.SetDefaults(&opts)
	if err := v1alpha1.Validate(&opts); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &opts, nil
}

// Default returns a fully-defaulted Options value, for callers that have no
// config file (e.g. library embedding, or the demo CLI run). It does not
// call Validate itself.
func Default() *v1alpha1.Options {
	opts := &v1alpha1.Options{}
	v1alpha1.SetDefaults(opts)
	return opts
}
