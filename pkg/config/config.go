package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"foresight/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers  []string `yaml:"brokers"`
		Topic    string   `yaml:"topic"`
		Consumer struct {
			GroupID  string `yaml:"group_id"`
			MinBytes int    `yaml:"min_bytes"`
			MaxBytes int    `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Stream struct {
		Source     string        `yaml:"source"` // randomwalk, websocket, kafka
		Instrument string        `yaml:"instrument"`
		Interval   time.Duration `yaml:"interval"`
		BatchSize  int           `yaml:"batch_size"`
		Websocket  struct {
			URL            string        `yaml:"url"`
			Token          string        `yaml:"token"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
		} `yaml:"websocket"`
		MirrorToKafka bool `yaml:"mirror_to_kafka"`
	} `yaml:"stream"`
	Window struct {
		Cadence time.Duration `yaml:"cadence"`
	} `yaml:"window"`
	Indicator struct {
		Component    string        `yaml:"component"` // moving_average, instrument_pricing
		Instrument   string        `yaml:"instrument"`
		Timescale    string        `yaml:"timescale"`
		Selection    string        `yaml:"selection"`
		PollInterval time.Duration `yaml:"poll_interval"`
		MaxBatch     int           `yaml:"max_batch"`
	} `yaml:"indicator"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PORT"); v != "" {
		c.ClickHouse.Port = util.ParseIntDefault(v, c.ClickHouse.Port)
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("STREAM_SOURCE"); v != "" {
		c.Stream.Source = v
	}
	if v := os.Getenv("STREAM_INSTRUMENT"); v != "" {
		c.Stream.Instrument = v
	}
	if v := os.Getenv("WEBSOCKET_TOKEN"); v != "" {
		c.Stream.Websocket.Token = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Metrics.Port <= 0 {
		c.Metrics.Port = 2112
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Stream.Source == "" {
		c.Stream.Source = "randomwalk"
	}
	if c.Stream.Instrument == "" {
		c.Stream.Instrument = "EUR_USD"
	}
	if c.Stream.Interval <= 0 {
		c.Stream.Interval = 5 * time.Second
	}
	if c.Stream.BatchSize <= 0 {
		c.Stream.BatchSize = 100
	}
	if c.Window.Cadence <= 0 {
		c.Window.Cadence = time.Minute
	}
	if c.Indicator.PollInterval <= 0 {
		c.Indicator.PollInterval = 5 * time.Second
	}
	if c.Indicator.MaxBatch <= 0 {
		c.Indicator.MaxBatch = 1000
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "foresight:queue"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.ClickHouse.Database == "" {
		return fmt.Errorf("clickhouse.database is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	switch c.Stream.Source {
	case "randomwalk", "websocket", "kafka":
	default:
		return fmt.Errorf("stream.source must be 'randomwalk', 'websocket' or 'kafka', got '%s'", c.Stream.Source)
	}
	if c.Stream.Source == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required for the kafka stream source")
	}
	if c.Stream.Source == "websocket" && c.Stream.Websocket.URL == "" {
		return fmt.Errorf("stream.websocket.url is required for the websocket stream source")
	}
	return nil
}
