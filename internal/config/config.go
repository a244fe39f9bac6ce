package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Source   SourceConfig   `mapstructure:"source"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Events   EventsConfig   `mapstructure:"events"`
	Export   ExportConfig   `mapstructure:"export"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	HTTPPort int    `mapstructure:"http_port"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// SourceConfig describes where the simulator writes its CSV log and how to read it
type SourceConfig struct {
	CSVPath     string `mapstructure:"csv_path"`
	DateColumn  string `mapstructure:"date_column"`  // Column rewritten to YYYY-MM-DD (default: internalCurrentDate)
	DateLayout  string `mapstructure:"date_layout"`  // Go layout of the source date (default: 02/01/2006)
	AgentColumn string `mapstructure:"agent_column"` // Column used for agent filtering (default: Agent)

	// WaitTimeout bounds the poll for the CSV to appear after a run is reported
	WaitTimeout  time.Duration `mapstructure:"wait_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`

	Watch           bool          `mapstructure:"watch"`            // Reload on file system changes
	RefreshInterval time.Duration `mapstructure:"refresh_interval"` // Periodic reload; 0 disables
}

// AnalysisConfig holds defaults applied when a request does not override them
type AnalysisConfig struct {
	MovingAverageWindow int     `mapstructure:"moving_average_window"`
	HistogramBins       int     `mapstructure:"histogram_bins"`
	CriticalThreshold   float64 `mapstructure:"critical_threshold"`
	Confidence          float64 `mapstructure:"confidence"`
	DownsampleThreshold int     `mapstructure:"downsample_threshold"`
}

// EventsConfig represents the run-completion event bus configuration
type EventsConfig struct {
	Type     string `mapstructure:"type"`    // memory (default), nats, redis, kafka
	URL      string `mapstructure:"url"`     // e.g. nats://localhost:4222, redis://localhost:6379
	Subject  string `mapstructure:"subject"` // subject/stream/topic carrying run events
	Password string `mapstructure:"password"`

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`
	RedisGroup    string `mapstructure:"redis_group"`
	RedisConsumer string `mapstructure:"redis_consumer"`

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaGroupID string   `mapstructure:"kafka_group_id"`
}

// ExportConfig represents export configuration
type ExportConfig struct {
	Dir string `mapstructure:"dir"` // Scratch directory for generated workbooks
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source config: %w", err)
	}

	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates source configuration
func (c *SourceConfig) Validate() error {
	if c.CSVPath == "" {
		return fmt.Errorf("csv_path is required")
	}

	if c.DateColumn == "" {
		return fmt.Errorf("date_column is required")
	}

	if c.DateLayout == "" {
		return fmt.Errorf("date_layout is required")
	}

	if c.WaitTimeout < 0 {
		return fmt.Errorf("wait_timeout cannot be negative")
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval cannot be negative")
	}

	return nil
}

// Validate validates analysis defaults
func (c *AnalysisConfig) Validate() error {
	if c.MovingAverageWindow < 1 {
		return fmt.Errorf("moving_average_window must be at least 1")
	}

	if c.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be at least 1")
	}

	if c.CriticalThreshold < 0 {
		return fmt.Errorf("critical_threshold cannot be negative")
	}

	switch c.Confidence {
	case 0.90, 0.95, 0.99:
	default:
		return fmt.Errorf("confidence must be one of 0.90, 0.95, 0.99")
	}

	if c.DownsampleThreshold < 0 {
		return fmt.Errorf("downsample_threshold cannot be negative")
	}

	return nil
}

// Validate validates events configuration
func (c *EventsConfig) Validate() error {
	switch c.Type {
	case "", "memory", "nats", "redis":
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("events.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("events.type must be one of: memory, nats, redis, kafka")
	}

	if c.Subject == "" {
		return fmt.Errorf("events.subject is required")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
