package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                   string `yaml:"port"`
	DatabaseURL            string `yaml:"databaseURL"`
	LogLevel               string `yaml:"logLevel"`
	RedisAddr              string `yaml:"redisAddr"`
	RedisPassword          string `yaml:"redisPassword"`
	ChatRateLimitPerMinute int    `yaml:"chatRateLimitPerMinute"`
	AMQPURL                string `yaml:"amqpURL"`
	AMQPExchange           string `yaml:"amqpExchange"`
	GenerationBaseURL      string `yaml:"generationBaseURL"`
	GenerationAPIKey       string `yaml:"generationAPIKey"`
	GenerationModel        string `yaml:"generationModel"`
	SystemPromptPath       string `yaml:"systemPromptPath"`
	MaxToolSteps           int    `yaml:"maxToolSteps"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.GenerationBaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.GenerationAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.GenerationModel = v
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.GenerationBaseURL == "" {
		return errors.New("config: generationBaseURL is required (set in config.yaml or OPENAI_BASE_URL)")
	}
	if cfg.GenerationModel == "" {
		return errors.New("config: generationModel is required (set in config.yaml or OPENAI_MODEL)")
	}
	return nil
}
