package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for gpio2mqtt.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Engine   EngineConfig   `yaml:"engine"`

	GPIOModules    []GPIOModuleConfig    `yaml:"gpio_modules"`
	DigitalInputs  []DigitalInputConfig  `yaml:"digital_inputs"`
	DigitalOutputs []DigitalOutputConfig `yaml:"digital_outputs"`
	Sensors        []SensorConfig        `yaml:"sensor_inputs"`
	Streams        []StreamConfig        `yaml:"streams"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// TopicPrefix is prepended to every topic this process touches.
	// Trailing slashes are stripped during load.
	TopicPrefix string `yaml:"topic_prefix"`

	// Status contains the availability topic settings. The broker publishes
	// PayloadDead on our behalf (LWT) if we disappear without saying goodbye.
	Status MQTTStatusConfig `yaml:"status"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MQTTStatusConfig contains availability reporting settings.
type MQTTStatusConfig struct {
	Topic          string `yaml:"topic"`
	PayloadRunning string `yaml:"payload_running"`
	PayloadStopped string `yaml:"payload_stopped"`
	PayloadDead    string `yaml:"payload_dead"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DatabaseConfig contains the optional SQLite state store settings.
// When enabled, digital outputs marked persist restore their last
// commanded value after a restart.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains the optional telemetry sink settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// EngineConfig contains tuning knobs for the synchronisation engine.
// Defaults are conservative; most installations never set these.
type EngineConfig struct {
	// ScanInterval is the digital input polling tick.
	ScanInterval time.Duration `yaml:"scan_interval"`

	// HardwareTimeout bounds every individual hardware read/write. A call
	// that exceeds it is treated as failed and abandoned.
	HardwareTimeout time.Duration `yaml:"hardware_timeout"`

	// WriteRetries is the number of attempts for a single output write.
	WriteRetries int `yaml:"write_retries"`

	// WriteRetryBackoff is the pause between output write attempts.
	WriteRetryBackoff time.Duration `yaml:"write_retry_backoff"`

	// PublishBufferSize bounds the number of messages queued locally while
	// the broker is unreachable.
	PublishBufferSize int `yaml:"publish_buffer_size"`

	// StreamQueueSize bounds the per-stream write backlog.
	StreamQueueSize int `yaml:"stream_queue_size"`

	// ShutdownGrace is how long workers get to finish their current
	// hardware operation before the process forces exit.
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// GPIOModuleConfig describes one hardware backend instance.
type GPIOModuleConfig struct {
	Name string `yaml:"name"`

	// Type selects the backend implementation: raspberrypi, mcp23017,
	// mcp3008, serial or mock.
	Type string `yaml:"module"`

	// Cleanup controls whether the backend's cleanup routine runs at
	// shutdown (some deployments share chips with other processes).
	Cleanup bool `yaml:"cleanup"`

	// Backend-specific parameters.
	I2CBusNum   int           `yaml:"i2c_bus_num"`
	ChipAddr    int           `yaml:"chip_addr"`
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	DataBits    int           `yaml:"data_bits"`
	StopBits    int           `yaml:"stop_bits"`
	Parity      string        `yaml:"parity"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// DigitalInputConfig describes one polled digital input pin.
type DigitalInputConfig struct {
	Name       string `yaml:"name"`
	Module     string `yaml:"module"`
	Pin        int    `yaml:"pin"`
	PullUp     bool   `yaml:"pullup"`
	PullDown   bool   `yaml:"pulldown"`
	Invert     bool   `yaml:"inverted"`
	OnPayload  string `yaml:"on_payload"`
	OffPayload string `yaml:"off_payload"`

	// Retain marks edge publishes retained so a late subscriber learns the
	// current state immediately. Unset means true.
	Retain *bool `yaml:"retain"`

	Debounce time.Duration `yaml:"debounce"`

	// InterruptEdge filters which transitions are published:
	// rising, falling, both or none (none publishes every edge,
	// matching polled inputs without edge filtering).
	InterruptEdge string `yaml:"interrupt_edge"`
}

// Retained reports whether this input's publishes keep the broker's last
// value. Defaults to true when retain is not set.
func (c DigitalInputConfig) Retained() bool {
	return c.Retain == nil || *c.Retain
}

// DigitalOutputConfig describes one commanded digital output pin.
type DigitalOutputConfig struct {
	Name       string `yaml:"name"`
	Module     string `yaml:"module"`
	Pin        int    `yaml:"pin"`
	Invert     bool   `yaml:"inverted"`
	OnPayload  string `yaml:"on_payload"`
	OffPayload string `yaml:"off_payload"`

	// Initial is the value driven at startup: "high", "low" or empty
	// (leave the pin as found).
	Initial string `yaml:"initial"`

	// Retain marks state publishes retained, mirroring the input contract.
	// Unset means true.
	Retain *bool `yaml:"retain"`

	// Persist restores the last commanded value from the state store at
	// startup, overriding Initial. Requires database.enabled.
	Persist bool `yaml:"persist"`
}

// Retained reports whether state publishes keep the broker's last value.
// Defaults to true when retain is not set.
func (c DigitalOutputConfig) Retained() bool {
	return c.Retain == nil || *c.Retain
}

// SensorConfig describes one periodically sampled analog sensor.
type SensorConfig struct {
	Name     string        `yaml:"name"`
	Module   string        `yaml:"module"`
	Channel  int           `yaml:"channel"`
	Interval time.Duration `yaml:"interval"`
	Digits   int           `yaml:"digits"`
	Retain   bool          `yaml:"retain"`
}

// StreamConfig describes one bidirectional byte stream.
type StreamConfig struct {
	Name   string `yaml:"name"`
	Module string `yaml:"module"`

	// QueueSize overrides engine.stream_queue_size for this stream.
	QueueSize int `yaml:"queue_size"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GPIO2MQTT_SECTION_KEY
// For example: GPIO2MQTT_MQTT_HOST, GPIO2MQTT_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "gpio2mqtt",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			TopicPrefix: "gpio2mqtt",
			Status: MQTTStatusConfig{
				Topic:          "status",
				PayloadRunning: "running",
				PayloadStopped: "stopped",
				PayloadDead:    "dead",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Database: DatabaseConfig{
			Path:        "./data/gpio2mqtt.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Engine: EngineConfig{
			ScanInterval:      50 * time.Millisecond,
			HardwareTimeout:   time.Second,
			WriteRetries:      3,
			WriteRetryBackoff: 100 * time.Millisecond,
			PublishBufferSize: 1024,
			StreamQueueSize:   64,
			ShutdownGrace:     5 * time.Second,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GPIO2MQTT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GPIO2MQTT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GPIO2MQTT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GPIO2MQTT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("GPIO2MQTT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GPIO2MQTT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// applyDefaults fills per-module defaults that depend on the module lists
// rather than on the static default tree.
func applyDefaults(cfg *Config) {
	cfg.MQTT.TopicPrefix = strings.TrimRight(cfg.MQTT.TopicPrefix, "/")

	for i := range cfg.DigitalInputs {
		in := &cfg.DigitalInputs[i]
		if in.OnPayload == "" {
			in.OnPayload = "ON"
		}
		if in.OffPayload == "" {
			in.OffPayload = "OFF"
		}
		if in.Debounce <= 0 {
			in.Debounce = 50 * time.Millisecond
		}
		if in.InterruptEdge == "" {
			in.InterruptEdge = "both"
		}
	}

	for i := range cfg.DigitalOutputs {
		out := &cfg.DigitalOutputs[i]
		if out.OnPayload == "" {
			out.OnPayload = "ON"
		}
		if out.OffPayload == "" {
			out.OffPayload = "OFF"
		}
	}

	for i := range cfg.Sensors {
		sens := &cfg.Sensors[i]
		if sens.Interval <= 0 {
			sens.Interval = 60 * time.Second
		}
		if sens.Digits == 0 {
			sens.Digits = 2
		}
	}

	for i := range cfg.Streams {
		str := &cfg.Streams[i]
		if str.QueueSize <= 0 {
			str.QueueSize = cfg.Engine.StreamQueueSize
		}
	}
}

// validEdges is the set of accepted interrupt_edge values.
var validEdges = map[string]bool{
	"rising":  true,
	"falling": true,
	"both":    true,
	"none":    true,
}

// Validate checks the configuration for structural errors.
//
// Module cross-references (digital_inputs[].module naming an existing
// gpio_modules[].name) are checked when the module registry is built, not
// here, because backend capabilities are unknown until backends open.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required")
	}
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when database.enabled")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb.enabled")
	}

	seen := make(map[string]bool)
	for _, mod := range c.GPIOModules {
		if mod.Name == "" {
			errs = append(errs, "gpio_modules[].name is required")
			continue
		}
		if mod.Type == "" {
			errs = append(errs, fmt.Sprintf("gpio_modules[%s].module is required", mod.Name))
		}
		if seen[mod.Name] {
			errs = append(errs, fmt.Sprintf("duplicate gpio module name %q", mod.Name))
		}
		seen[mod.Name] = true
	}

	errs = append(errs, validateNames("digital_inputs", inputNames(c.DigitalInputs))...)
	errs = append(errs, validateNames("digital_outputs", outputNames(c.DigitalOutputs))...)
	errs = append(errs, validateNames("sensor_inputs", sensorNames(c.Sensors))...)
	errs = append(errs, validateNames("streams", streamNames(c.Streams))...)

	for _, in := range c.DigitalInputs {
		if in.PullUp && in.PullDown {
			errs = append(errs, fmt.Sprintf("digital input %q: pullup and pulldown are mutually exclusive", in.Name))
		}
		if !validEdges[in.InterruptEdge] {
			errs = append(errs, fmt.Sprintf("digital input %q: interrupt_edge must be rising, falling, both or none", in.Name))
		}
	}

	for _, out := range c.DigitalOutputs {
		if out.Initial != "" && out.Initial != "high" && out.Initial != "low" {
			errs = append(errs, fmt.Sprintf("digital output %q: initial must be high, low or empty", out.Name))
		}
		if out.OnPayload == out.OffPayload {
			errs = append(errs, fmt.Sprintf("digital output %q: on_payload and off_payload must differ", out.Name))
		}
		if out.Persist && !c.Database.Enabled {
			errs = append(errs, fmt.Sprintf("digital output %q: persist requires database.enabled", out.Name))
		}
	}

	for _, sens := range c.Sensors {
		if sens.Digits < 0 {
			errs = append(errs, fmt.Sprintf("sensor %q: digits must not be negative", sens.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateNames checks that every name in a category is present and unique.
func validateNames(category string, names []string) []string {
	var errs []string
	seen := make(map[string]bool)
	for _, name := range names {
		if name == "" {
			errs = append(errs, fmt.Sprintf("%s[].name is required", category))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("duplicate %s name %q", category, name))
		}
		seen[name] = true
	}
	return errs
}

func inputNames(list []DigitalInputConfig) []string {
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return names
}

func outputNames(list []DigitalOutputConfig) []string {
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return names
}

func sensorNames(list []SensorConfig) []string {
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return names
}

func streamNames(list []StreamConfig) []string {
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return names
}
