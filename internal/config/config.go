// Package config loads and validates the application configuration.
// Configuration is read from a YAML file, defaults are applied, ${VAR}
// references and container environment variables are resolved, and the
// result is validated as a whole so every problem is reported at once.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and prepares the configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	expandEnvVars(&cfg)
	ApplyEnv(&cfg)

	return &cfg, nil
}

// Default returns a configuration built purely from defaults and the
// environment, for running without a config file.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	ApplyEnv(&cfg)
	return &cfg
}

// expandEnvVars resolves ${VAR} and ${VAR:default} references in
// credential fields.
func expandEnvVars(c *Config) {
	c.Push.FeishuWebhookURL = expandEnv(c.Push.FeishuWebhookURL)
	c.Push.DingTalkWebhookURL = expandEnv(c.Push.DingTalkWebhookURL)
	c.Push.WeworkWebhookURL = expandEnv(c.Push.WeworkWebhookURL)
	c.Push.TelegramBotToken = expandEnv(c.Push.TelegramBotToken)
	c.Push.TelegramChatID = expandEnv(c.Push.TelegramChatID)
	c.Crawler.ProxyURL = expandEnv(c.Crawler.ProxyURL)
}

// expandEnv resolves a ${VAR:default} reference.
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		if val := os.Getenv(parts[0]); val != "" {
			return val
		}
		return parts[1]
	}

	return os.Getenv(content)
}
