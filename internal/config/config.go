package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection" mapstructure:"collection"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Sources    SourcesConfig    `yaml:"sources" mapstructure:"sources"`
	Crunchbase CrunchbaseConfig `yaml:"crunchbase" mapstructure:"crunchbase"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	GoogleNews GoogleNewsConfig `yaml:"googlenews" mapstructure:"googlenews"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	S3         S3Config         `yaml:"s3" mapstructure:"s3"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Schedule   ScheduleConfig   `yaml:"schedule" mapstructure:"schedule"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CollectionConfig configures the persisted startup collection.
type CollectionConfig struct {
	Path            string `yaml:"path" mapstructure:"path"`
	LockTimeoutSecs int    `yaml:"lock_timeout_secs" mapstructure:"lock_timeout_secs"`
	Archive         bool   `yaml:"archive" mapstructure:"archive"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SourcesConfig configures collection sources.
type SourcesConfig struct {
	RegistryPath  string `yaml:"registry_path" mapstructure:"registry_path"`
	DaysBack      int    `yaml:"days_back" mapstructure:"days_back"`
	UseScrapers   bool   `yaml:"use_scrapers" mapstructure:"use_scrapers"`
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxArticles   int    `yaml:"max_articles" mapstructure:"max_articles"`
}

// CrunchbaseConfig holds Crunchbase API settings.
type CrunchbaseConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Limit   int    `yaml:"limit" mapstructure:"limit"`
}

// GoogleConfig holds Google Custom Search settings.
type GoogleConfig struct {
	Key     string `yaml:"api_key" mapstructure:"api_key"`
	CSEID   string `yaml:"cse_id" mapstructure:"cse_id"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Query   string `yaml:"query" mapstructure:"query"`
}

// GoogleNewsConfig holds Google News RSS settings.
type GoogleNewsConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Query   string `yaml:"query" mapstructure:"query"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	Model         string `yaml:"model" mapstructure:"model"`
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// NotionConfig holds Notion API credentials and the feed database.
type NotionConfig struct {
	Token      string `yaml:"token" mapstructure:"token"`
	DatabaseID string `yaml:"database_id" mapstructure:"database_id"`
}

// S3Config configures snapshot archiving.
type S3Config struct {
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Region    string `yaml:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
	PathStyle bool   `yaml:"path_style" mapstructure:"path_style"`
	// Static credentials; the default AWS chain is used when empty.
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// ScheduleConfig configures recurring runs.
type ScheduleConfig struct {
	Frequency string `yaml:"frequency" mapstructure:"frequency"`
	Hour      int    `yaml:"hour" mapstructure:"hour"`
}

// MonitoringConfig configures status checks and alerting.
type MonitoringConfig struct {
	LookbackHours        int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	StaleAfterHours      int     `yaml:"stale_after_hours" mapstructure:"stale_after_hours"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VENTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("collection.path", "data/startups.json")
	v.SetDefault("collection.lock_timeout_secs", 30)
	v.SetDefault("collection.archive", false)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "data/venture-watch.db")
	v.SetDefault("sources.registry_path", "sources.yaml")
	v.SetDefault("sources.days_back", 7)
	v.SetDefault("sources.use_scrapers", true)
	v.SetDefault("sources.max_concurrent", 4)
	v.SetDefault("sources.max_articles", 20)
	v.SetDefault("crunchbase.base_url", "https://api.crunchbase.com/api/v4")
	v.SetDefault("crunchbase.limit", 50)
	v.SetDefault("google.base_url", "https://www.googleapis.com")
	v.SetDefault("google.query", "startup raises funding round")
	v.SetDefault("googlenews.base_url", "https://news.google.com")
	v.SetDefault("googlenews.query", "startup funding")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_concurrent", 3)
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.prefix", "snapshots/")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("schedule.frequency", "daily")
	v.SetDefault("schedule.hour", 8)
	v.SetDefault("monitoring.lookback_hours", 24)
	v.SetDefault("monitoring.stale_after_hours", 48)
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
