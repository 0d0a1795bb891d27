package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds the terminal client settings. Values come from an optional
// yaml file overlaid by environment variables.
type Config struct {
	APIBaseURL      string `yaml:"api_base_url"`
	WSBaseURL       string `yaml:"ws_base_url"`
	NATSURL         string `yaml:"nats_url"`
	ExternalID      string `yaml:"external_id"`
	DisplayName     string `yaml:"display_name"`
	PingIntervalSec int    `yaml:"ping_interval_sec"`
	LogLevel        string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		APIBaseURL:      "http://localhost:8000",
		WSBaseURL:       "ws://localhost:8000",
		DisplayName:     "Player",
		PingIntervalSec: 25,
		LogLevel:        "info",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.APIBaseURL = getEnv("PARTYROUND_API_URL", config.APIBaseURL)
	config.WSBaseURL = getEnv("PARTYROUND_WS_URL", config.WSBaseURL)
	config.NATSURL = getEnv("PARTYROUND_NATS_URL", config.NATSURL)
	config.ExternalID = getEnv("PARTYROUND_EXTERNAL_ID", config.ExternalID)
	config.DisplayName = getEnv("PARTYROUND_NAME", config.DisplayName)
	config.PingIntervalSec = getEnvAsInt("PARTYROUND_PING_INTERVAL_SEC", config.PingIntervalSec)
	config.LogLevel = getEnv("PARTYROUND_LOG_LEVEL", config.LogLevel)

	if config.ExternalID == "" {
		// Fresh identity per run when none is configured.
		config.ExternalID = uuid.New().String()
	}
	return config, nil
}
