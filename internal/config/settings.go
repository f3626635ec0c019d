package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Config holds the tool settings. Values come from data/settings.json (with
// an embedded default written on first run) and individual fields can be
// overridden through environment variables.
type Config struct {
	GeoLite struct {
		DatabasePath string `json:"database_path"`
		APIKey       string `json:"api_key"`
		AutoUpdate   bool   `json:"auto_update"`
	} `json:"geolite"`

	// HomeCountry is the ISO 3166-1 code whose networks are excluded from
	// the foreign list.
	HomeCountry string `json:"home_country"`

	Output struct {
		Path string `json:"path"`
	} `json:"output"`

	Progress struct {
		// Interval is how many records pass between progress log lines.
		Interval int `json:"interval"`
	} `json:"progress"`
}

const settingsFilePath = "data/settings.json"

var (
	//go:embed default_settings.json
	defaultConfig []byte

	configValue atomic.Value
)

func init() {
	configValue.Store(Config{})
}

// ReadSettings loads the settings file, creating it from the embedded default
// when missing, and applies environment overrides on top.
func ReadSettings() {
	data, err := os.ReadFile(settingsFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Settings file not found, creating with default configuration")

			if err := os.MkdirAll("data", os.ModePerm); err != nil {
				log.Error("Error creating directory for settings file:", "error", err)
				return
			}
			if err := os.WriteFile(settingsFilePath, defaultConfig, os.ModePerm); err != nil {
				log.Error("Error writing default settings file:", "error", err)
				return
			}

			data = defaultConfig
		} else {
			log.Error("Error reading settings file:", "error", err)
			return
		}
	}

	var newConfig Config
	if err := json.Unmarshal(data, &newConfig); err != nil {
		log.Error("Error unmarshalling settings file:", "error", err)
		return
	}

	applyEnvOverrides(&newConfig)
	configValue.Store(newConfig)

	log.Debug("Settings loaded successfully")
}

// Environment variables take precedence over the settings file so one-off
// runs can be steered without editing it.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEOLITE_DB_PATH"); v != "" {
		cfg.GeoLite.DatabasePath = v
	}
	if v := os.Getenv("GEOLITE_API_KEY"); v != "" {
		cfg.GeoLite.APIKey = v
	}
	if v := os.Getenv("HOME_COUNTRY"); v != "" {
		cfg.HomeCountry = strings.ToUpper(v)
	}
	if v := os.Getenv("OUTPUT_PATH"); v != "" {
		cfg.Output.Path = v
	}
}

// GetConfig returns the current configuration atomically.
func GetConfig() Config {
	return configValue.Load().(Config)
}
