package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoaderAppliesDefaults(t *testing.T) {
	loader, err := NewLoader(writeConfig(t, "http:\n  addr: \":9090\"\n"))
	require.NoError(t, err)

	cfg := loader.Config()
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, "transactions", cfg.Kafka.Topic)
	require.EqualValues(t, 5000, cfg.Rules.HighAmountThreshold)
	require.Equal(t, "USA", cfg.Rules.DomesticLocation)
	require.EqualValues(t, 1000, cfg.Rules.RoundAmountDivisor)
	require.Equal(t, 10000, cfg.Activity.WindowMs)
	require.Equal(t, 1000, cfg.Retry.BaseDelayMs)
	require.Equal(t, 3, cfg.Retry.MaxAttempts)

	require.NoError(t, Validate(cfg))
}

func TestLoaderRejectsBadYAML(t *testing.T) {
	_, err := NewLoader(writeConfig(t, "kafka: [not: a: mapping"))
	require.Error(t, err)
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no brokers", func(c *Config) { c.Kafka.Brokers = nil }},
		{"blank broker", func(c *Config) { c.Kafka.Brokers = []string{" "} }},
		{"no topic", func(c *Config) { c.Kafka.Topic = "" }},
		{"no group", func(c *Config) { c.Kafka.GroupID = "" }},
		{"session below heartbeat", func(c *Config) { c.Kafka.SessionTimeoutMs = 1 }},
		{"negative threshold", func(c *Config) { c.Rules.HighAmountThreshold = -1 }},
		{"no domestic location", func(c *Config) { c.Rules.DomesticLocation = "" }},
		{"zero divisor", func(c *Config) { c.Rules.RoundAmountDivisor = -1 }},
		{"zero window", func(c *Config) { c.Activity.WindowMs = -1 }},
		{"zero base delay", func(c *Config) { c.Retry.BaseDelayMs = -1 }},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			applyDefaults(&cfg)
			tc.mutate(&cfg)
			require.Error(t, Validate(&cfg))
		})
	}
}

func TestReloadInvokesCallbacks(t *testing.T) {
	path := writeConfig(t, "rules:\n  high_amount_threshold: 5000\n")
	loader, err := NewLoader(path)
	require.NoError(t, err)

	var got *Config
	loader.OnChange(func(c *Config) { got = c })

	require.NoError(t, os.WriteFile(path, []byte("rules:\n  high_amount_threshold: 2000\n"), 0o644))
	cfg, err := loader.Reload()
	require.NoError(t, err)
	require.EqualValues(t, 2000, cfg.Rules.HighAmountThreshold)
	require.NotNil(t, got)
	require.EqualValues(t, 2000, got.Rules.HighAmountThreshold)
}
