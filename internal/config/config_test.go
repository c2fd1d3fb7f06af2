package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/config"
)

func validConfig() *config.Config {
	return config.NewDefaultConfig()
}

func TestConfig_Validate_DefaultsAreValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Violations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"port too high", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"rate limit rps", func(c *config.Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.RequestsPerSecond = -1
		}, "server.rate_limit.requests_per_second"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"collection", func(c *config.Config) { c.Advisory.Collection = "" }, "advisory.collection"},
		{"prefix length", func(c *config.Config) { c.Advisory.PrefixLength = -1 }, "advisory.prefix_length"},
		{"max matches", func(c *config.Config) { c.Advisory.MaxMatches = -3 }, "advisory.max_matches"},
		{"trigger ratio", func(c *config.Config) { c.Advisory.PortfolioTriggerRatio = -5 }, "advisory.portfolio_trigger_ratio"},
		{"overshoot below one", func(c *config.Config) { c.Advisory.OvershootFactor = 0.9 }, "advisory.overshoot_factor"},
		{"energy multiplier", func(c *config.Config) { c.Advisory.EnergyMultiplier = -1 }, "advisory.energy_multiplier"},
		{"carbon field", func(c *config.Config) { c.Advisory.Fields.Carbon = "" }, "advisory.fields.carbon"},
		{"opensearch", func(c *config.Config) { c.OpenSearch.Addresses = nil }, "opensearch.addresses"},
		{"redis addr", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"kafka brokers", func(c *config.Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}, "kafka.brokers"},
		{"textgen provider", func(c *config.Config) { c.TextGen.Provider = "claude" }, "textgen.provider"},
		{"textgen key", func(c *config.Config) { c.TextGen.Provider = config.TextGenProviderGemini }, "textgen.api_key"},
		{"sheets id", func(c *config.Config) { c.Sheets.Enabled = true }, "sheets.spreadsheet_id"},
		{"sheets timezone", func(c *config.Config) { c.Sheets.Timezone = "Mars/Olympus" }, "sheets.timezone"},
		{"sync interval", func(c *config.Config) { c.Worker.SyncInterval = -1 }, "worker.sync_interval"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestConfig_Validate_TextGenWithKey(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.TextGen.Provider = config.TextGenProviderOpenAI
	cfg.TextGen.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}
