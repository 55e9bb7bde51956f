package config

// Config is the top-level YAML structure.
type Config struct {
	Kafka    KafkaConf    `yaml:"kafka"`
	HTTP     HTTPConf     `yaml:"http"`
	Rules    RulesConf    `yaml:"rules"`
	Activity ActivityConf `yaml:"activity"`
	Retry    RetryConf    `yaml:"retry"`
}

// KafkaConf identifies the broker, topic and consumer group.
type KafkaConf struct {
	Brokers             []string `yaml:"brokers"`
	Topic               string   `yaml:"topic"`
	GroupID             string   `yaml:"group_id"`
	HeartbeatIntervalMs int      `yaml:"heartbeat_interval_ms"`
	SessionTimeoutMs    int      `yaml:"session_timeout_ms"`
}

// HTTPConf holds the query API settings.
type HTTPConf struct {
	Addr string `yaml:"addr"`
}

// RulesConf holds the tunable rule thresholds. These hot-reload.
type RulesConf struct {
	HighAmountThreshold int64  `yaml:"high_amount_threshold"`
	DomesticLocation    string `yaml:"domestic_location"`
	RoundAmountDivisor  int64  `yaml:"round_amount_divisor"`
}

// ActivityConf holds the per-user activity window settings.
type ActivityConf struct {
	WindowMs        int `yaml:"window_ms"`
	SweepIntervalMs int `yaml:"sweep_interval_ms"`
}

// RetryConf holds the transient-failure backoff settings.
type RetryConf struct {
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxAttempts int `yaml:"max_attempts"`
}
