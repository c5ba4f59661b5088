package config

import "strings"

// MaskSecret keeps the first and last 4 characters of a secret visible.
// Short secrets are masked entirely.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) < 8 {
		return "***"
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// MaskWebhookURL masks the token portion of a webhook URL, keeping the
// host visible for diagnostics.
func MaskWebhookURL(url string) string {
	if url == "" {
		return ""
	}

	idx := strings.Index(url, "://")
	if idx == -1 {
		return MaskSecret(url)
	}

	rest := url[idx+3:]
	slash := strings.Index(rest, "/")
	if slash == -1 {
		return url
	}

	return url[:idx+3] + rest[:slash] + "/" + MaskSecret(rest[slash+1:])
}

// MaskTelegramToken masks a <bot_id>:<token> credential, keeping the bot
// ID visible.
func MaskTelegramToken(token string) string {
	if token == "" {
		return ""
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return MaskSecret(token)
	}

	return parts[0] + ":" + MaskSecret(parts[1])
}

// Masked returns a copy of the configuration with all credentials masked,
// safe for printing and logging.
func (c *Config) Masked() Config {
	out := *c
	out.Push.FeishuWebhookURL = MaskWebhookURL(c.Push.FeishuWebhookURL)
	out.Push.DingTalkWebhookURL = MaskWebhookURL(c.Push.DingTalkWebhookURL)
	out.Push.WeworkWebhookURL = MaskWebhookURL(c.Push.WeworkWebhookURL)
	out.Push.TelegramBotToken = MaskTelegramToken(c.Push.TelegramBotToken)
	return out
}
