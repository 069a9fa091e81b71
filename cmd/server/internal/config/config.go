// Package config loads service configuration from environment
// variables, optionally overlaid by a YAML file named in CONFIG_FILE.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Log       LogConfig       `yaml:"log"`
	Recall    RecallConfig    `yaml:"recall"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Summarize SummarizeConfig `yaml:"summarize"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Env       string `yaml:"env"`  // dev, development, staging, production
	Port      string `yaml:"port"`
	PublicURL string `yaml:"public_url"` // base URL the bot provider can reach for webhooks
}

// DataConfig holds storage locations.
type DataConfig struct {
	MeetingsDir  string `yaml:"meetings_dir"`
	AuditLogPath string `yaml:"audit_log_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// RecallConfig holds meeting-bot provider settings.
type RecallConfig struct {
	APIKey         string `yaml:"api_key"`
	APIURL         string `yaml:"api_url"`
	BotName        string `yaml:"bot_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GeminiConfig holds LLM provider settings. Multiple API keys are
// rotated when one hits its quota.
type GeminiConfig struct {
	APIKeys []string `yaml:"api_keys"`
	Model   string   `yaml:"model"`
}

// SummarizeConfig tunes the summarization path.
type SummarizeConfig struct {
	MinTranscriptChars int `yaml:"min_transcript_chars"`
	MaxAttempts        int `yaml:"max_attempts"`
	MaxConcurrent      int `yaml:"max_concurrent"`
	TimeoutSeconds     int `yaml:"timeout_seconds"`
}

// LoadConfig reads configuration from environment variables. When
// CONFIG_FILE names a YAML file, its non-zero values take precedence
// over the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Env:       getEnv("ENV", "dev"),
			Port:      getEnv("PORT", "8000"),
			PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
		},
		Data: DataConfig{
			MeetingsDir:  getEnv("DATA_DIR", "./data/meetings"),
			AuditLogPath: getEnv("AUDIT_LOG_PATH", "./data/audit/webhooks.log"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Recall: RecallConfig{
			APIKey:         getEnv("RECALL_API_KEY", ""),
			APIURL:         getEnv("RECALL_API_URL", "https://us-west-2.recall.ai/api/v1/bot"),
			BotName:        getEnv("BOT_NAME", "Meeting Notetaker"),
			TimeoutSeconds: getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		},
		Gemini: GeminiConfig{
			APIKeys: parseStringList(getEnv("GEMINI_API_KEYS", os.Getenv("GEMINI_API_KEY"))),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Summarize: SummarizeConfig{
			MinTranscriptChars: getEnvInt("SUMMARY_MIN_TRANSCRIPT_CHARS", 50),
			MaxAttempts:        getEnvInt("SUMMARY_MAX_ATTEMPTS", 3),
			MaxConcurrent:      getEnvInt("SUMMARY_MAX_CONCURRENT", 2),
			TimeoutSeconds:     getEnvInt("SUMMARY_TIMEOUT_SECONDS", 120),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(cfg, path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// overlayFile merges a YAML config file over cfg. File values win.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")
	return nil
}

// ValidateConfig checks the loaded configuration and reports every
// problem at once.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.Recall.APIKey == "" {
		errors = append(errors, "RECALL_API_KEY is required")
	}
	if cfg.Server.PublicURL == "" {
		errors = append(errors, "PUBLIC_URL is required (webhook callbacks cannot be built without it)")
	}
	if len(cfg.Gemini.APIKeys) == 0 {
		errors = append(errors, "GEMINI_API_KEYS is required")
	}
	if cfg.Recall.APIURL == "" {
		errors = append(errors, "RECALL_API_URL cannot be empty")
	}
	if cfg.Data.MeetingsDir == "" {
		errors = append(errors, "DATA_DIR cannot be empty")
	}

	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid PORT value: %s (must be 1-65535)", cfg.Server.Port))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Log.Level] {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL: %s (must be: debug, info, warn, error)", cfg.Log.Level))
	}

	validEnvs := map[string]bool{"dev": true, "development": true, "staging": true, "production": true}
	if !validEnvs[cfg.Server.Env] {
		errors = append(errors, fmt.Sprintf("invalid ENV: %s (must be: dev, development, staging, production)", cfg.Server.Env))
	}

	if cfg.Summarize.MinTranscriptChars < 1 {
		errors = append(errors, "SUMMARY_MIN_TRANSCRIPT_CHARS must be positive")
	}
	if cfg.Summarize.MaxAttempts < 1 {
		errors = append(errors, "SUMMARY_MAX_ATTEMPTS must be positive")
	}
	if cfg.Summarize.MaxConcurrent < 1 {
		errors = append(errors, "SUMMARY_MAX_CONCURRENT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetServerAddr returns the listen address.
func (c *Config) GetServerAddr() string {
	return ":" + c.Server.Port
}

// PrintConfig renders the configuration with secrets masked.
func (c *Config) PrintConfig() string {
	keys := make([]string, 0, len(c.Gemini.APIKeys))
	for _, k := range c.Gemini.APIKeys {
		keys = append(keys, maskSecret(k))
	}
	return fmt.Sprintf(`Configuration Loaded:
  Environment: %s
  Server Port: %s
  Public URL: %s
  Meetings Dir: %s
  Audit Log: %s
  Log Level: %s
  Recall:
    - API URL: %s
    - API Key: %s
    - Bot Name: %s
  Gemini:
    - Model: %s
    - API Keys: %v`,
		c.Server.Env,
		c.Server.Port,
		c.Server.PublicURL,
		c.Data.MeetingsDir,
		c.Data.AuditLogPath,
		c.Log.Level,
		c.Recall.APIURL,
		maskSecret(c.Recall.APIKey),
		c.Recall.BotName,
		c.Gemini.Model,
		keys,
	)
}

// getEnv returns the environment value for key, or defaultValue when unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer environment value, falling back on
// defaultValue when unset or malformed.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// parseStringList splits a comma-separated list, dropping empties.
func parseStringList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// maskSecret hides the middle of sensitive values.
func maskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}
