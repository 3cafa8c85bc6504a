package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// BenchmarkConfig represents the configuration file structure
type BenchmarkConfig struct {
	APIURL    string `json:"api_url"`
	BatchSize int    `json:"batch_size"`
}

// Apply copies file values into cfg for every setting still at its flag default
func (b *BenchmarkConfig) Apply(cfg *Config) {
	if cfg.APIURL == defaultAPIURL && b.APIURL != "" {
		cfg.APIURL = b.APIURL
	}
	if cfg.BatchSize == defaultBatchSize && b.BatchSize > 0 {
		cfg.BatchSize = b.BatchSize
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*BenchmarkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg BenchmarkConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveConfig writes cfg to path, creating the directory if needed
func SaveConfig(path string, cfg *BenchmarkConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetDefaultConfigPath returns ~/.remixhub-benchmark.json, or a relative path without a home directory
func GetDefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".remixhub-benchmark.json"
	}
	return filepath.Join(home, ".remixhub-benchmark.json")
}
