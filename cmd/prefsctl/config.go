package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML configuration file. Flags set on the command line win.
type fileConfig struct {
	LogLevel   string      `yaml:"log_level"`
	Store      string      `yaml:"store"`
	DSN        string      `yaml:"dsn"`
	Namespace  string      `yaml:"namespace"`
	Locale     string      `yaml:"locale"`
	Res        string      `yaml:"res"`
	Prefs      string      `yaml:"prefs"`
	ListenAddr string      `yaml:"listen_addr"`
	Cache      cacheConfig `yaml:"cache"`
}

type cacheConfig struct {
	Type string `yaml:"type"`
	Addr string `yaml:"addr"`
	TTL  string `yaml:"ttl"`
}

func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
