package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalysisConfig selects which analyses to run and where their inputs live.
// Every analysis named in Run must have its required input path set; this is
// validated before anything is loaded.
type AnalysisConfig struct {
	PacketsPath      string `yaml:"packets_path"`
	MovementPath     string `yaml:"movement_path"`
	ConnectivityPath string `yaml:"connectivity_path"`

	// NodeCount, when positive, fixes the normal-node universe to the ids
	// 0..NodeCount-1 instead of deriving it from the log.
	NodeCount   int    `yaml:"node_count"`
	SpineSuffix string `yaml:"spine_suffix"`

	// SeriesSize is the number of packets per transmission round; 0 means
	// infer it from the send stream.
	SeriesSize  int `yaml:"series_size"`
	WindowSteps int `yaml:"window_steps"`

	Run []string `yaml:"run"`
}

// CSVWriterConfig configures the CSV result writer.
type CSVWriterConfig struct {
	RootPath string `yaml:"root_path"`
}

// GobWriterConfig configures the gob report snapshot writer.
type GobWriterConfig struct {
	RootPath string `yaml:"root_path"`
}

// ClickHouseConfig holds the connection settings for ClickHouse writers and
// the query API.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WriterDef defines a single result writer.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	CSV        CSVWriterConfig  `yaml:"csv"`
	Gob        GobWriterConfig  `yaml:"gob"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// SMTPConfig holds the mail settings for alert notifications.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"` // comma-separated recipients
}

// AlertRule is one threshold checked against the finished report.
type AlertRule struct {
	// Metric is one of "health_fraction", "delivery_ratio",
	// "online_fraction".
	Metric string  `yaml:"metric"`
	Min    float64 `yaml:"min"`
}

// AlerterConfig configures post-run threshold alerts.
type AlerterConfig struct {
	Enabled bool        `yaml:"enabled"`
	Rules   []AlertRule `yaml:"rules"`
	SMTP    SMTPConfig  `yaml:"smtp"`
}

// CollectorConfig configures the NATS packet-event collector.
type CollectorConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// APIConfig configures the HTTP query API.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Writers   []WriterDef     `yaml:"writers"`
	Alerter   AlerterConfig   `yaml:"alerter"`
	Collector CollectorConfig `yaml:"collector"`
	API       APIConfig       `yaml:"api"`
}

const (
	defaultSpineSuffix = "S"
	defaultWindowSteps = 10
)

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct with defaults applied and the analysis section validated.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Analysis.SpineSuffix == "" {
		c.Analysis.SpineSuffix = defaultSpineSuffix
	}
	if c.Analysis.WindowSteps <= 0 {
		c.Analysis.WindowSteps = defaultWindowSteps
	}
}

// analysisInputs maps each analysis to the input stream it needs.
var analysisInputs = map[string]string{
	"health":       "packets",
	"qos":          "packets",
	"connectivity": "connectivity",
	"movement":     "movement",
}

// Validate checks that every requested analysis is known and has its input
// path configured. Validation happens up front so a run either starts with
// everything it needs or not at all.
func (c *Config) Validate() error {
	if len(c.Analysis.Run) == 0 {
		return fmt.Errorf("analysis.run is empty: nothing to do")
	}
	for _, name := range c.Analysis.Run {
		stream, ok := analysisInputs[name]
		if !ok {
			return fmt.Errorf("unknown analysis %q in analysis.run", name)
		}
		if c.inputPath(stream) == "" {
			return fmt.Errorf("analysis %q requires the %s log, but no path is configured", name, stream)
		}
	}
	if c.Analysis.SeriesSize < 0 {
		return fmt.Errorf("analysis.series_size must not be negative")
	}
	if c.Analysis.NodeCount < 0 {
		return fmt.Errorf("analysis.node_count must not be negative")
	}
	for _, rule := range c.Alerter.Rules {
		switch rule.Metric {
		case "health_fraction", "delivery_ratio", "online_fraction":
		default:
			return fmt.Errorf("unknown alert metric %q", rule.Metric)
		}
	}
	return nil
}

// inputPath returns the configured path for a named input stream.
func (c *Config) inputPath(stream string) string {
	switch stream {
	case "packets":
		return c.Analysis.PacketsPath
	case "movement":
		return c.Analysis.MovementPath
	case "connectivity":
		return c.Analysis.ConnectivityPath
	}
	return ""
}

// NeedsStream reports whether any requested analysis consumes the stream.
func (c *Config) NeedsStream(stream string) bool {
	for _, name := range c.Analysis.Run {
		if analysisInputs[name] == stream {
			return true
		}
	}
	return false
}
