package config

import (
	"os"
	"strings"
)

// Container environment variables. These override config file values so
// the image can be reconfigured without rebuilding.
const (
	EnvCronSchedule       = "CRON_SCHEDULE"
	EnvRunMode            = "RUN_MODE"
	EnvImmediateRun       = "IMMEDIATE_RUN"
	EnvConfigPath         = "CONFIG_PATH"
	EnvFrequencyWordsPath = "FREQUENCY_WORDS_PATH"
	EnvOutputPath         = "OUTPUT_PATH"
	EnvTimezone           = "TZ"
	EnvFeishuWebhookURL   = "FEISHU_WEBHOOK_URL"
	EnvDingTalkWebhookURL = "DINGTALK_WEBHOOK_URL"
	EnvWeworkWebhookURL   = "WEWORK_WEBHOOK_URL"
	EnvTelegramBotToken   = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID     = "TELEGRAM_CHAT_ID"
)

// ApplyEnv overlays container environment variables on top of cfg.
func ApplyEnv(c *Config) {
	if v := os.Getenv(EnvCronSchedule); v != "" {
		c.Schedule = v
	}
	if v := os.Getenv(EnvRunMode); v != "" {
		c.Report.Mode = v
	}
	if v := os.Getenv(EnvImmediateRun); v != "" {
		c.ImmediateRun = isTruthy(v)
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvFrequencyWordsPath); v != "" {
		c.Paths.FrequencyWords = v
	}
	if v := os.Getenv(EnvOutputPath); v != "" {
		c.Paths.Output = v
	}
	if v := os.Getenv(EnvFeishuWebhookURL); v != "" {
		c.Push.FeishuWebhookURL = v
	}
	if v := os.Getenv(EnvDingTalkWebhookURL); v != "" {
		c.Push.DingTalkWebhookURL = v
	}
	if v := os.Getenv(EnvWeworkWebhookURL); v != "" {
		c.Push.WeworkWebhookURL = v
	}
	if v := os.Getenv(EnvTelegramBotToken); v != "" {
		c.Push.TelegramBotToken = v
	}
	if v := os.Getenv(EnvTelegramChatID); v != "" {
		c.Push.TelegramChatID = v
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// LoadEnv loads KEY=VALUE pairs from a .env style file into the process
// environment. Empty lines and # comments are skipped.
func LoadEnv(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key != "" {
			os.Setenv(key, value)
		}
	}

	return nil
}

// LoadEnvOptional is LoadEnv for a file that may not exist.
func LoadEnvOptional(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return LoadEnv(path)
}
