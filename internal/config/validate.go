package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the settings a command needs before it starts. mode names
// the command: collect, update, enrich, publish, serve or schedule.
func (c *Config) Validate(mode string) error {
	var problems []string
	require := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	require(c.Collection.Path != "", "collection.path is required")
	require(c.Collection.LockTimeoutSecs >= 0, "collection.lock_timeout_secs must not be negative")
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver == "postgres" {
		require(c.Store.DatabaseURL != "", "store.database_url is required for postgres")
	}
	if c.Collection.Archive {
		require(c.S3.Bucket != "", "s3.bucket is required when collection.archive is set")
	}

	switch mode {
	case "collect", "update":
		require(c.Sources.DaysBack > 0, "sources.days_back must be positive")
		require(c.Sources.MaxConcurrent > 0, "sources.max_concurrent must be positive")
	case "enrich":
		require(c.Anthropic.Key != "", "anthropic.key is required")
		require(c.Anthropic.MaxConcurrent > 0, "anthropic.max_concurrent must be positive")
	case "publish":
		require(c.Notion.Token != "", "notion.token is required")
		require(c.Notion.DatabaseID != "", "notion.database_id is required")
	case "serve":
		require(c.Server.Port > 0 && c.Server.Port < 65536, "server.port must be between 1 and 65535")
	case "schedule":
		require(c.Schedule.Frequency == "daily" || c.Schedule.Frequency == "weekly",
			"schedule.frequency must be daily or weekly")
		require(c.Schedule.Hour >= 0 && c.Schedule.Hour < 24, "schedule.hour must be between 0 and 23")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}
