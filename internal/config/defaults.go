package config

// Defaults mirror the container image contract: port 8000, config/ and
// output/ under the working directory, Asia/Shanghai timestamps.
const (
	DefaultSchedule   = "*/30 * * * *"
	DefaultTimezone   = "Asia/Shanghai"
	DefaultPort       = 8000
	DefaultConfigFile = "config/config.yaml"
)

func applyDefaults(c *Config) {
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}

	if c.Crawler.TimeoutSeconds == 0 {
		c.Crawler.TimeoutSeconds = 10
	}
	if c.Crawler.UserAgent == "" {
		c.Crawler.UserAgent = "TrendRadar/1.0 (+https://github.com/trendradar/trendradar)"
	}

	if c.Report.Mode == "" {
		c.Report.Mode = "daily"
	}
	if c.Report.TopN == 0 {
		c.Report.TopN = 10
	}

	if c.Push.MaxMessageRunes == 0 {
		c.Push.MaxMessageRunes = 4000
	}

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.SSEReplay == 0 {
		c.Server.SSEReplay = 64
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Bus.Capacity == 0 {
		c.Bus.Capacity = 1000
	}

	if c.Workers.PoolSize == 0 {
		c.Workers.PoolSize = 5
	}
	if c.Workers.QueueSize == 0 {
		c.Workers.QueueSize = 100
	}

	if c.Paths.ConfigDir == "" {
		c.Paths.ConfigDir = "config"
	}
	if c.Paths.FrequencyWords == "" {
		c.Paths.FrequencyWords = "config/frequency_words.txt"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
}
