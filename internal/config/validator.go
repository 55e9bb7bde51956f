package config

import (
	"fmt"
	"strings"
)

// Validate rejects configs that would misbehave at runtime: empty broker
// lists, nonpositive thresholds, windows or delays.
func Validate(cfg *Config) error {
	var errs []string

	if len(cfg.Kafka.Brokers) == 0 {
		errs = append(errs, "kafka: brokers must not be empty")
	}
	for i, b := range cfg.Kafka.Brokers {
		if strings.TrimSpace(b) == "" {
			errs = append(errs, fmt.Sprintf("kafka: brokers[%d] is blank", i))
		}
	}
	if cfg.Kafka.Topic == "" {
		errs = append(errs, "kafka: topic is required")
	}
	if cfg.Kafka.GroupID == "" {
		errs = append(errs, "kafka: group_id is required")
	}
	if cfg.Kafka.HeartbeatIntervalMs <= 0 {
		errs = append(errs, "kafka: heartbeat_interval_ms must be positive")
	}
	if cfg.Kafka.SessionTimeoutMs <= cfg.Kafka.HeartbeatIntervalMs {
		errs = append(errs, "kafka: session_timeout_ms must exceed heartbeat_interval_ms")
	}
	if cfg.Rules.HighAmountThreshold <= 0 {
		errs = append(errs, "rules: high_amount_threshold must be positive")
	}
	if cfg.Rules.DomesticLocation == "" {
		errs = append(errs, "rules: domestic_location is required")
	}
	if cfg.Rules.RoundAmountDivisor <= 0 {
		errs = append(errs, "rules: round_amount_divisor must be positive")
	}
	if cfg.Activity.WindowMs <= 0 {
		errs = append(errs, "activity: window_ms must be positive")
	}
	if cfg.Activity.SweepIntervalMs <= 0 {
		errs = append(errs, "activity: sweep_interval_ms must be positive")
	}
	if cfg.Retry.BaseDelayMs <= 0 {
		errs = append(errs, "retry: base_delay_ms must be positive")
	}
	if cfg.Retry.MaxAttempts <= 0 {
		errs = append(errs, "retry: max_attempts must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
