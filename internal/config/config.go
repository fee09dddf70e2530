// Package config loads the YAML configuration file that supplies the
// fields the original tool took as constructor arguments.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of an ingest run's configuration.
type Config struct {
	XPRootPath     string `yaml:"xp_root_path"`
	DBPath         string `yaml:"db_path"`
	ForceFullParse bool   `yaml:"force_full_parse"`
	LoggingEnabled bool   `yaml:"logging_enabled"`

	// LinearFeatureFilter overrides recordparser.DefaultLinearFeatureFilter
	// when non-empty. This is the one documented lever for which surface
	// markings a linear feature must carry to be retained.
	LinearFeatureFilter []int `yaml:"linear_feature_filter,omitempty"`
}

// LoadConfig reads and unmarshals a YAML file of type T.
func LoadConfig[T any](filepath string) (*T, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", filepath, err)
	}
	var cfg T
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filepath, err)
	}
	log.Printf("configuration loaded from %s", filepath)
	return &cfg, nil
}

// Load reads the ingest pipeline's Config from path.
func Load(path string) (*Config, error) {
	return LoadConfig[Config](path)
}
