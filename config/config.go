package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Tracking TrackingConfig `yaml:"tracking"`
	Redis    RedisConfig    `yaml:"redis"`
	Stub     StubConfig     `yaml:"stub"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	AIPathPrefix   string `yaml:"ai_path_prefix"`
}

type TrackingConfig struct {
	BaseURL            string `yaml:"base_url"`
	APIKey             string `yaml:"api_key"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StubConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	// Адрес бэкенда можно переопределить окружением (так делают на стендах).
	if v := os.Getenv("SHOPCORE_API_BASE_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv("SHOPCORE_TRACKING_API_KEY"); v != "" {
		config.Tracking.APIKey = v
	}

	return &config, nil
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
