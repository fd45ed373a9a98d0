package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/BorhanSaflo/cali/app/lang"
)

// config is read from ~/.config/cali/config.toml. Every field has a working
// default; a missing file is not an error.
type config struct {
	DebounceMs int            `toml:"debounce_ms"`
	TickMs     int            `toml:"tick_ms"`
	Currency   currencyConfig `toml:"currency"`
}

type currencyConfig struct {
	URL        string `toml:"url"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

func defaultConfig() config {
	return config{
		DebounceMs: 500,
		TickMs:     100,
		Currency: currencyConfig{
			URL:        lang.DefaultRateURL,
			TTLMinutes: 60,
		},
	}
}

func loadConfig() (config, error) {
	cfg := defaultConfig()
	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(home, ".config", "cali", "config.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DebounceMs < 0 {
		cfg.DebounceMs = 0
	}
	if cfg.TickMs <= 0 {
		cfg.TickMs = defaultConfig().TickMs
	}
	if cfg.Currency.URL == "" {
		cfg.Currency.URL = lang.DefaultRateURL
	}
	if cfg.Currency.TTLMinutes <= 0 {
		cfg.Currency.TTLMinutes = defaultConfig().Currency.TTLMinutes
	}
	return cfg, nil
}
