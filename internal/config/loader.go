package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/simlens")
	}

	setDefaults(v)

	// SIMLENS_SOURCE_CSV_PATH overrides source.csv_path
	v.SetEnvPrefix("SIMLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)

	v.SetDefault("auth.enabled", d.Auth.Enabled)

	v.SetDefault("source.csv_path", d.Source.CSVPath)
	v.SetDefault("source.date_column", d.Source.DateColumn)
	v.SetDefault("source.date_layout", d.Source.DateLayout)
	v.SetDefault("source.agent_column", d.Source.AgentColumn)
	v.SetDefault("source.wait_timeout", d.Source.WaitTimeout.String())
	v.SetDefault("source.poll_interval", d.Source.PollInterval.String())
	v.SetDefault("source.watch", d.Source.Watch)
	v.SetDefault("source.refresh_interval", d.Source.RefreshInterval.String())

	v.SetDefault("analysis.moving_average_window", d.Analysis.MovingAverageWindow)
	v.SetDefault("analysis.histogram_bins", d.Analysis.HistogramBins)
	v.SetDefault("analysis.critical_threshold", d.Analysis.CriticalThreshold)
	v.SetDefault("analysis.confidence", d.Analysis.Confidence)
	v.SetDefault("analysis.downsample_threshold", d.Analysis.DownsampleThreshold)

	v.SetDefault("events.type", d.Events.Type)
	v.SetDefault("events.subject", d.Events.Subject)
	v.SetDefault("events.redis_group", d.Events.RedisGroup)
	v.SetDefault("events.kafka_group_id", d.Events.KafkaGroupID)

	v.SetDefault("export.dir", d.Export.Dir)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			HTTPPort: 5580,
		},
		Source: SourceConfig{
			CSVPath:         "./logs/wpsSimulator.csv",
			DateColumn:      "internalCurrentDate",
			DateLayout:      "02/01/2006",
			AgentColumn:     "Agent",
			WaitTimeout:     5 * time.Second,
			PollInterval:    250 * time.Millisecond,
			Watch:           false,
			RefreshInterval: 5 * time.Second,
		},
		Analysis: AnalysisConfig{
			MovingAverageWindow: 5,
			HistogramBins:       10,
			CriticalThreshold:   0.2,
			Confidence:          0.95,
			DownsampleThreshold: 1000,
		},
		Events: EventsConfig{
			Type:         "memory",
			Subject:      "simlens.runs",
			RedisGroup:   "simlens-group",
			KafkaGroupID: "simlens-group",
		},
		Export: ExportConfig{
			Dir: "./exports",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
