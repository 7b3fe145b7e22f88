// Package config loads and persists tmx configuration.
// The discount and threshold constants carried here are preserved exactly as
// calibrated; downstream historical comparisons depend on the figures.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete tmx configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Confidence ConfidenceConfig `json:"confidence" mapstructure:"confidence"`
	Thresholds ThresholdConfig  `json:"thresholds" mapstructure:"thresholds"`
	Cache      CacheConfig      `json:"cache" mapstructure:"cache"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// ConfidenceConfig contains the fixed confidence rules applied during link
// construction and transitive composition
type ConfidenceConfig struct {
	// DerivationCap bounds feature→user-requirement confidence
	DerivationCap float64 `json:"derivationCap" mapstructure:"derivationCap"`
	// ExplicitDerivation is the fixed confidence of user→software links
	ExplicitDerivation float64 `json:"explicitDerivation" mapstructure:"explicitDerivation"`
	// RiskRelation is the fixed confidence of requirement→risk links
	RiskRelation float64 `json:"riskRelation" mapstructure:"riskRelation"`
	// TransitiveDiscount multiplies feature confidence per composed chain
	TransitiveDiscount float64 `json:"transitiveDiscount" mapstructure:"transitiveDiscount"`
}

// ThresholdConfig contains weak-link classification thresholds
type ThresholdConfig struct {
	// WeakLinkHigh: confidence below this is a high-severity weak link
	WeakLinkHigh float64 `json:"weakLinkHigh" mapstructure:"weakLinkHigh"`
	// WeakLinkMedium: confidence below this (and at or above WeakLinkHigh)
	// is a medium-severity weak link
	WeakLinkMedium float64 `json:"weakLinkMedium" mapstructure:"weakLinkMedium"`
}

// CacheConfig contains matrix cache configuration
type CacheConfig struct {
	MatrixTtlMinutes int `json:"matrixTtlMinutes" mapstructure:"matrixTtlMinutes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"` // "json" | "human"
	Level  string `json:"level" mapstructure:"level"`   // "debug" | "info" | "warn" | "error"
}

// ConfigDirName is the directory under the project root holding tmx state
const ConfigDirName = ".tmx"

// ConfigFileName is the configuration file name inside ConfigDirName
const ConfigFileName = "config.json"

// DefaultConfig returns the default configuration (v1 schema)
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Confidence: ConfidenceConfig{
			DerivationCap:      0.9,
			ExplicitDerivation: 0.95,
			RiskRelation:       0.9,
			TransitiveDiscount: 0.8,
		},
		Thresholds: ThresholdConfig{
			WeakLinkHigh:   0.3,
			WeakLinkMedium: 0.5,
		},
		Cache: CacheConfig{
			MatrixTtlMinutes: 30,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads the configuration from <root>/.tmx/config.json, applying
// defaults for any missing keys. A missing file yields the defaults.
func Load(root string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(root, ConfigDirName, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to <root>/.tmx/config.json
func Save(root string, cfg *Config) error {
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("confidence.derivationCap", cfg.Confidence.DerivationCap)
	v.SetDefault("confidence.explicitDerivation", cfg.Confidence.ExplicitDerivation)
	v.SetDefault("confidence.riskRelation", cfg.Confidence.RiskRelation)
	v.SetDefault("confidence.transitiveDiscount", cfg.Confidence.TransitiveDiscount)
	v.SetDefault("thresholds.weakLinkHigh", cfg.Thresholds.WeakLinkHigh)
	v.SetDefault("thresholds.weakLinkMedium", cfg.Thresholds.WeakLinkMedium)
	v.SetDefault("cache.matrixTtlMinutes", cfg.Cache.MatrixTtlMinutes)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.level", cfg.Logging.Level)
}
