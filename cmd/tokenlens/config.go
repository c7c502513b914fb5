package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDir  = ".tokenlens"
	configFile = ".tokenlens/config.yaml"

	defaultStoragePath = ".tokenlens/store.db"
)

// ProjectConfig holds the contents of .tokenlens/config.yaml.
type ProjectConfig struct {
	Version         string `yaml:"version"`
	DocumentPath    string `yaml:"document_path"`
	StoragePath     string `yaml:"storage_path"`
	CallLogPath     string `yaml:"call_log_path"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	GhostFailClosed bool   `yaml:"ghost_fail_closed"`
	Pages           string `yaml:"pages"`
}

// loadProjectConfig reads .tokenlens/config.yaml from the current
// directory. Returns nil (no error) if the file does not exist.
func loadProjectConfig() (*ProjectConfig, error) {
	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	return &cfg, nil
}

// resolvePath applies the flag > config > default fallback chain.
func resolvePath(flagValue, configValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	return fallback
}

// writeProjectConfig creates .tokenlens/config.yaml. It refuses to
// overwrite an existing config.
func writeProjectConfig(cfg ProjectConfig) error {
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists", configFile)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(configFile, data, 0o644)
}

// ensureStorageDir creates the parent directory for the key-value
// store file if needed.
func ensureStorageDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
