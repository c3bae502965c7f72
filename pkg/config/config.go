package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	OutputDir  string `mapstructure:"OUTPUT_DIR"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	PageLoadTimeoutSeconds int    `mapstructure:"PAGE_LOAD_TIMEOUT"`
	CrawlWorkers           int    `mapstructure:"CRAWL_WORKERS"`
	JobWorkers             int    `mapstructure:"JOB_WORKERS"`
	DefaultMaxDepth        int    `mapstructure:"DEFAULT_MAX_DEPTH"`
	JobStatusTTLHours      int    `mapstructure:"JOB_STATUS_TTL_HOURS"`
	QueuePollIntervalMS    int    `mapstructure:"QUEUE_POLL_INTERVAL_MS"`
	ChromeHeadless         bool   `mapstructure:"CHROME_HEADLESS"`
	Proxies                string `mapstructure:"PROXIES"`
	UserAgents             string `mapstructure:"USER_AGENTS"`

	AnthropicAPIKey  string `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel   string `mapstructure:"ANTHROPIC_MODEL"`
	SummaryMaxChars  int    `mapstructure:"SUMMARY_MAX_CHARS"`
	SummaryMaxTokens int    `mapstructure:"SUMMARY_MAX_TOKENS"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional; production configures purely through the environment.
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OUTPUT_DIR", "downloads")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PAGE_LOAD_TIMEOUT", 10) // in seconds
	v.SetDefault("CRAWL_WORKERS", 1)
	v.SetDefault("JOB_WORKERS", 2)
	v.SetDefault("DEFAULT_MAX_DEPTH", 3)
	v.SetDefault("JOB_STATUS_TTL_HOURS", 24)
	v.SetDefault("QUEUE_POLL_INTERVAL_MS", 500)
	v.SetDefault("CHROME_HEADLESS", true)
	v.SetDefault("PROXIES", "")
	v.SetDefault("USER_AGENTS", "")
	v.SetDefault("ANTHROPIC_API_KEY", "")
	v.SetDefault("ANTHROPIC_MODEL", "claude-sonnet-4-5")
	v.SetDefault("SUMMARY_MAX_CHARS", 8000)
	v.SetDefault("SUMMARY_MAX_TOKENS", 1500)
}

// PageLoadTimeout is the bounded wait for a page to become ready.
func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSeconds) * time.Second
}

func (c *Config) JobStatusTTL() time.Duration {
	return time.Duration(c.JobStatusTTLHours) * time.Hour
}

func (c *Config) QueuePollInterval() time.Duration {
	return time.Duration(c.QueuePollIntervalMS) * time.Millisecond
}

// ProxyList splits PROXIES on commas, dropping blanks.
func (c *Config) ProxyList() []string {
	return SplitList(c.Proxies)
}

// UserAgentList splits USER_AGENTS on commas, dropping blanks.
func (c *Config) UserAgentList() []string {
	return SplitList(c.UserAgents)
}

// SplitList splits a comma-separated value, trimming entries and dropping empty ones.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
