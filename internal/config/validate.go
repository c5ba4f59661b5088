package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks the whole configuration and returns every problem found.
func (c *Config) Validate() []error {
	var errors []error

	if c.Schedule == "" {
		errors = append(errors, fmt.Errorf("schedule is required (5-field cron expression, e.g. \"*/30 * * * *\")"))
	} else if _, err := cronParser.Parse(c.Schedule); err != nil {
		errors = append(errors, fmt.Errorf("invalid schedule %q: %w", c.Schedule, err))
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errors = append(errors, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
		}
	}

	if len(c.Crawler.Platforms) == 0 {
		errors = append(errors, fmt.Errorf("crawler.platforms cannot be empty"))
	}
	seen := make(map[string]bool)
	for i, p := range c.Crawler.Platforms {
		if p.ID == "" {
			errors = append(errors, fmt.Errorf("crawler.platforms[%d].id is required", i))
			continue
		}
		if seen[p.ID] {
			errors = append(errors, fmt.Errorf("crawler.platforms: duplicate id %q", p.ID))
		}
		seen[p.ID] = true

		switch p.Source {
		case "", "api":
		case "html":
			if p.ItemSelector == "" || p.TitleSelector == "" {
				errors = append(errors, fmt.Errorf("crawler.platforms[%s]: html source requires item_selector and title_selector", p.ID))
			}
		default:
			errors = append(errors, fmt.Errorf("crawler.platforms[%s]: invalid source %q (expected: api, html)", p.ID, p.Source))
		}

		if p.URL == "" {
			errors = append(errors, fmt.Errorf("crawler.platforms[%s].url is required", p.ID))
		} else if !strings.HasPrefix(p.URL, "http://") && !strings.HasPrefix(p.URL, "https://") {
			errors = append(errors, fmt.Errorf("crawler.platforms[%s].url must start with http:// or https://", p.ID))
		}
	}

	switch c.Report.Mode {
	case "daily", "current", "incremental":
	default:
		errors = append(errors, fmt.Errorf("invalid report.mode: %s (expected: daily, current, incremental)", c.Report.Mode))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Errorf("invalid server.port: %d", c.Server.Port))
	}

	if c.Push.TelegramBotToken != "" {
		if err := validateTelegramToken(c.Push.TelegramBotToken); err != nil {
			errors = append(errors, err)
		}
		if c.Push.TelegramChatID == "" {
			errors = append(errors, fmt.Errorf("push.telegram_chat_id is required when push.telegram_bot_token is set"))
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errors = append(errors, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errors = append(errors, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}

	return errors
}

func validateTelegramToken(token string) error {
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return fmt.Errorf("telegram token has invalid format (expected <bot_id>:<token>, got: %s)", MaskTelegramToken(token))
	}

	botID := parts[0]
	if len(botID) < 3 || len(botID) > 15 {
		return fmt.Errorf("telegram token has invalid bot ID length (expected 3-15 digits, got %d)", len(botID))
	}
	for _, r := range botID {
		if r < '0' || r > '9' {
			return fmt.Errorf("telegram token has invalid bot ID (expected digits only)")
		}
	}

	if len(parts[1]) < 10 {
		return fmt.Errorf("telegram token part is too short")
	}

	return nil
}
