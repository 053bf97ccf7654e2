package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/vango-dev/observable/internal/errors"
	"github.com/vango-dev/observable/pkg/entry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "observable.json"

	// DefaultPort is the default feed server port.
	DefaultPort = 8080

	// DefaultHost is the default feed server host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "observable"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "observable"
)

// Duration is a time.Duration that reads and writes as a Go duration
// string ("5s", "250ms") in JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the complete observable.json configuration.
type Config struct {
	// Name identifies the served collection in metrics, traces and logs.
	Name string `json:"name,omitempty"`

	// Server contains feed server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Seed lists the entries the served collection starts with.
	Seed []entry.Record `json:"seed,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains feed server configuration.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty"`

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout Duration `json:"writeTimeout,omitempty"`

	// PingInterval is the WebSocket heartbeat period.
	PingInterval Duration `json:"pingInterval,omitempty"`

	// SendBuffer is the number of messages queued per client before the
	// client is dropped as too slow.
	SendBuffer int `json:"sendBuffer,omitempty"`

	// MaxClients caps concurrent event stream clients. Zero means no cap.
	MaxClients int `json:"maxClients,omitempty"`

	// MutationRate is the sustained number of mutating requests accepted
	// per second, with bursts of up to MutationBurst. Zero means no limit.
	MutationRate  float64 `json:"mutationRate,omitempty"`
	MutationBurst int     `json:"mutationBurst,omitempty"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry configuration.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "entries",
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: Duration(10 * time.Second),
			WriteTimeout:    Duration(5 * time.Second),
			PingInterval:    Duration(30 * time.Second),
			SendBuffer:      64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			TracerName: DefaultTracerName,
		},
		Seed: []entry.Record{
			{ID: 1, Name: "One"},
			{ID: 2, Name: "Two"},
		},
	}
}

// Load reads configuration from observable.json in the given directory.
// A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.New("E101").Wrap(err).
			WithSuggestion("Check the permissions of " + path)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = ConfigFileName
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E102").Wrap(err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.New("E101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	defaults := New()

	if c.Name == "" {
		c.Name = defaults.Name
	}
	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = defaults.Server.PingInterval
	}
	if c.Server.SendBuffer == 0 {
		c.Server.SendBuffer = defaults.Server.SendBuffer
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = defaults.Tracing.TracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E103").
			WithDetail("Port " + strconv.Itoa(c.Server.Port) + " is not between 0 and 65535")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E104").
			WithDetail("Unknown log level " + strconv.Quote(c.Log.Level))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E104").
			WithDetail("Unknown log format " + strconv.Quote(c.Log.Format))
	}

	for name, d := range map[string]Duration{
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.pingInterval":    c.Server.PingInterval,
	} {
		if d <= 0 {
			return errors.New("E105").
				WithDetail(name + " must be positive, got " + d.Std().String())
		}
	}

	if c.Server.SendBuffer < 1 {
		return errors.New("E106").
			WithDetail("server.sendBuffer is " + strconv.Itoa(c.Server.SendBuffer))
	}

	if c.Server.MaxClients < 0 {
		return errors.New("E107").
			WithDetail("server.maxClients is " + strconv.Itoa(c.Server.MaxClients))
	}
	if c.Server.MutationRate < 0 || c.Server.MutationBurst < 0 {
		return errors.New("E107").
			WithDetail("server.mutationRate and server.mutationBurst must not be negative")
	}

	return nil
}

// Address returns the listen address of the feed server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}
