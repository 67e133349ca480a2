package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/InfinixInfotech/Trading-App/internal/strategy"
)

var validate = validator.New()

type strategiesFile struct {
	Strategies []strategy.StrategyConfig `yaml:"strategies"`
}

// LoadStrategies reads the strategy catalog from a YAML file. An empty
// path returns the built-in defaults so the daemon can run without any
// catalog file.
func LoadStrategies(path string) ([]strategy.StrategyConfig, error) {
	if path == "" {
		return strategy.Defaults(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategies: %w", err)
	}

	var f strategiesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse strategies: %w", err)
	}
	if len(f.Strategies) == 0 {
		return nil, fmt.Errorf("strategies file %s defines no strategies", path)
	}

	for i := range f.Strategies {
		cfg := &f.Strategies[i]
		if err := defaults.Set(&cfg.Params); err != nil {
			return nil, fmt.Errorf("strategy %s: defaults: %w", cfg.ID, err)
		}
		if err := validate.Struct(cfg); err != nil {
			return nil, fmt.Errorf("strategy %s: %w", cfg.ID, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Strategies, nil
}
