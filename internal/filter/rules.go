// Package filter implements text normalization and the local relevance gate.
package filter

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules holds the promotional lexicon and relevance keyword lists.
type Rules struct {
	AdPatterns []string `yaml:"ad_patterns"`
	Keywords   []string `yaml:"keywords"`

	adRes []*regexp.Regexp
}

// DefaultRules returns the embedded rule set.
func DefaultRules() (*Rules, error) {
	return parseRules(defaultRules)
}

// LoadRules reads a rule set from a YAML file. An empty path returns the
// embedded defaults.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return parseRules(data)
}

func parseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for _, p := range r.AdPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile ad pattern %q: %w", p, err)
		}
		r.adRes = append(r.adRes, re)
	}
	return &r, nil
}
