package config

// Config is the full application configuration, loaded from config.yaml
// and overridable through container environment variables.
type Config struct {
	Schedule     string `yaml:"schedule"`      // cron expression for the crawl pipeline
	ImmediateRun bool   `yaml:"immediate_run"` // run the pipeline once right after startup
	Timezone     string `yaml:"timezone"`      // IANA zone used for batch timestamps and report dates

	Crawler CrawlerConfig `yaml:"crawler"`
	Report  ReportConfig  `yaml:"report"`
	Push    PushConfig    `yaml:"push"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Bus     BusConfig     `yaml:"bus"`
	Workers WorkersConfig `yaml:"workers"`
	Paths   PathsConfig   `yaml:"paths"`
}

// CrawlerConfig controls how platform hot lists are fetched.
type CrawlerConfig struct {
	TimeoutSeconds int        `yaml:"timeout_seconds"`
	UserAgent      string     `yaml:"user_agent"`
	ProxyURL       string     `yaml:"proxy_url"`
	Platforms      []Platform `yaml:"platforms"`
}

// Platform describes one hot-list source.
type Platform struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Source string `yaml:"source"` // api | html
	URL    string `yaml:"url"`
	Limit  int    `yaml:"limit"`

	// CSS selectors, used only when Source is "html".
	ItemSelector  string `yaml:"item_selector"`
	TitleSelector string `yaml:"title_selector"`
	LinkSelector  string `yaml:"link_selector"`
}

// ReportConfig controls report generation.
type ReportConfig struct {
	Mode string `yaml:"mode"` // daily | current | incremental
	TopN int    `yaml:"top_n"`
}

// PushConfig holds notification channel credentials. A channel is enabled
// by the presence of its credential.
type PushConfig struct {
	FeishuWebhookURL   string `yaml:"feishu_webhook_url"`
	DingTalkWebhookURL string `yaml:"dingtalk_webhook_url"`
	WeworkWebhookURL   string `yaml:"wework_webhook_url"`
	TelegramBotToken   string `yaml:"telegram_bot_token"`
	TelegramChatID     string `yaml:"telegram_chat_id"`
	MaxMessageRunes    int    `yaml:"max_message_runes"`
}

// ServerConfig controls the HTTP/SSE server.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	SSEReplay int    `yaml:"sse_replay"` // events replayed to a reconnecting client
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// BusConfig configures the event bus.
type BusConfig struct {
	Capacity int `yaml:"capacity"`
}

// WorkersConfig configures the crawl worker pool.
type WorkersConfig struct {
	PoolSize  int `yaml:"pool_size"`
	QueueSize int `yaml:"queue_size"`
}

// PathsConfig is the on-disk layout of the container.
type PathsConfig struct {
	ConfigDir      string `yaml:"config_dir"`
	FrequencyWords string `yaml:"frequency_words"`
	Output         string `yaml:"output"`
	KeepDays       int    `yaml:"keep_days"` // output retention, 0 keeps everything
}
