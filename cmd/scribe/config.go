package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds the CLI-wide settings.
type Config struct {
	ServerURL string `yaml:"server_url" json:"server_url"`
	Output    string `yaml:"-" json:"-"`
}

// LoadConfig resolves settings from flags, environment variables, and
// the config file, highest priority first.
func LoadConfig(cmd *cobra.Command) *Config {
	cfg := &Config{}

	loadConfigFile(cfg)

	if v := os.Getenv("SCRIBE_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}

	if v, _ := cmd.Flags().GetString("server-url"); v != "" {
		cfg.ServerURL = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.Output = v
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8000"
	}
	if cfg.Output == "" {
		cfg.Output = "text"
	}

	return cfg
}

// loadConfigFile reads ~/.scribe/config.yaml if present.
func loadConfigFile(cfg *Config) {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	path := filepath.Join(home, ".scribe", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = yaml.Unmarshal(data, cfg)
}

// addGlobalFlags registers the flags shared by every subcommand.
func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("server-url", "", "server address (env: SCRIBE_SERVER_URL, default: http://localhost:8000)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: json / text (default: text)")
}
