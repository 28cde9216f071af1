package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/vango-dev/authsync/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "authsync.json"

	// DefaultPort is the default demo server port.
	DefaultPort = 3000

	// DefaultHost is the default demo server host.
	DefaultHost = "localhost"

	// DefaultWaitTimeout is the default payload wait budget.
	DefaultWaitTimeout = "3s"

	// DefaultPollInterval is the default payload poll interval.
	DefaultPollInterval = "150ms"

	// DefaultBlobPollInterval is the default blob channel poll interval.
	DefaultBlobPollInterval = "500ms"
)

// Channel backends.
const (
	BackendMemory    = "memory"
	BackendWebSocket = "websocket"
	BackendBlob      = "blob"
)

// Config represents the complete authsync.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Server contains demo server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Channel contains cross-context channel configuration.
	Channel ChannelConfig `json:"channel,omitempty"`

	// Sync contains propagation toggles applied to new islands.
	Sync SyncConfig `json:"sync,omitempty"`

	// Hydration contains strategy and wait tuning.
	Hydration HydrationConfig `json:"hydration,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains demo server settings.
type ServerConfig struct {
	// Port is the port to serve on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`
}

// ChannelConfig selects and tunes the cross-context channel backend.
type ChannelConfig struct {
	// Backend is one of: memory, websocket, blob.
	Backend string `json:"backend,omitempty"`

	// WebSocket contains websocket backend settings.
	WebSocket WebSocketConfig `json:"websocket,omitempty"`

	// Blob contains blob-store backend settings.
	Blob BlobConfig `json:"blob,omitempty"`
}

// WebSocketConfig contains websocket channel settings.
type WebSocketConfig struct {
	// URL is the sync endpoint to dial (e.g., "ws://host:3000/sync").
	URL string `json:"url,omitempty"`
}

// BlobConfig contains blob channel settings.
type BlobConfig struct {
	// Bucket is the S3 bucket holding the shared snapshot.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to the snapshot key.
	Prefix string `json:"prefix,omitempty"`

	// Key is the object key for the shared snapshot.
	Key string `json:"key,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty"`

	// PollInterval is the polling cadence (e.g., "500ms").
	PollInterval string `json:"pollInterval,omitempty"`
}

// SyncConfig contains the propagation toggles applied to new islands.
type SyncConfig struct {
	// CrossIsland enables sibling propagation within a context.
	CrossIsland *bool `json:"crossIsland,omitempty"`

	// CrossTab enables propagation over the channel.
	CrossTab *bool `json:"crossTab,omitempty"`
}

// HydrationConfig contains strategy and wait tuning.
type HydrationConfig struct {
	// Strategy is the default strategy for new islands.
	Strategy string `json:"strategy,omitempty"`

	// WaitTimeout bounds the wait for an embedded payload (e.g., "3s").
	WaitTimeout string `json:"waitTimeout,omitempty"`

	// PollInterval is the payload poll cadence (e.g., "150ms").
	PollInterval string `json:"pollInterval,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Server: ServerConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
		Channel: ChannelConfig{
			Backend: BackendMemory,
			Blob: BlobConfig{
				Key:          "authsync/state.json",
				PollInterval: DefaultBlobPollInterval,
			},
		},
		Hydration: HydrationConfig{
			Strategy:     "immediate",
			WaitTimeout:  DefaultWaitTimeout,
			PollInterval: DefaultPollInterval,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// authsync.json in the directory; a missing file yields the defaults
// with environment overrides applied.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return nil, errors.New("A080").Wrap(err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("A080").
				WithDetail("Failed to parse authsync.json: " + err.Error()).
				WithSuggestion("Check that authsync.json is valid JSON")
		}
		cfg.configPath = path
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("A080").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("A080").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Channel.Backend == "" {
		c.Channel.Backend = BackendMemory
	}
	if c.Channel.Blob.Key == "" {
		c.Channel.Blob.Key = "authsync/state.json"
	}
	if c.Channel.Blob.PollInterval == "" {
		c.Channel.Blob.PollInterval = DefaultBlobPollInterval
	}
	if c.Hydration.Strategy == "" {
		c.Hydration.Strategy = "immediate"
	}
	if c.Hydration.WaitTimeout == "" {
		c.Hydration.WaitTimeout = DefaultWaitTimeout
	}
	if c.Hydration.PollInterval == "" {
		c.Hydration.PollInterval = DefaultPollInterval
	}
}

// applyEnv layers AUTHSYNC_* environment variables over the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("AUTHSYNC_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("AUTHSYNC_PORT"); v != "" {
		if p, err := net.LookupPort("tcp", v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("AUTHSYNC_CHANNEL"); v != "" {
		c.Channel.Backend = v
	}
	if v := os.Getenv("AUTHSYNC_WS_URL"); v != "" {
		c.Channel.WebSocket.URL = v
	}
	if v := os.Getenv("AUTHSYNC_BLOB_BUCKET"); v != "" {
		c.Channel.Blob.Bucket = v
	}
	if v := os.Getenv("AUTHSYNC_BLOB_PREFIX"); v != "" {
		c.Channel.Blob.Prefix = v
	}
	if v := os.Getenv("AUTHSYNC_BLOB_KEY"); v != "" {
		c.Channel.Blob.Key = v
	}
	if v := os.Getenv("AUTHSYNC_BLOB_REGION"); v != "" {
		c.Channel.Blob.Region = v
	}
	if v := os.Getenv("AUTHSYNC_STRATEGY"); v != "" {
		c.Hydration.Strategy = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("A083").
			WithDetail("Port must be between 0 and 65535")
	}

	switch c.Channel.Backend {
	case BackendMemory:
	case BackendWebSocket:
		if c.Channel.WebSocket.URL == "" {
			return errors.New("A082").
				WithDetail("channel.websocket.url is required for the websocket backend").
				WithSuggestion("Set channel.websocket.url or AUTHSYNC_WS_URL")
		}
	case BackendBlob:
		if c.Channel.Blob.Bucket == "" {
			return errors.New("A082").
				WithDetail("channel.blob.bucket is required for the blob backend").
				WithSuggestion("Set channel.blob.bucket or AUTHSYNC_BLOB_BUCKET")
		}
	default:
		return errors.New("A081").
			WithDetail("Unknown channel backend: " + c.Channel.Backend)
	}

	if _, err := time.ParseDuration(c.Hydration.WaitTimeout); err != nil {
		return errors.New("A080").
			WithDetail("hydration.waitTimeout is not a duration: " + c.Hydration.WaitTimeout)
	}
	if _, err := time.ParseDuration(c.Hydration.PollInterval); err != nil {
		return errors.New("A080").
			WithDetail("hydration.pollInterval is not a duration: " + c.Hydration.PollInterval)
	}
	if _, err := time.ParseDuration(c.Channel.Blob.PollInterval); err != nil {
		return errors.New("A080").
			WithDetail("channel.blob.pollInterval is not a duration: " + c.Channel.Blob.PollInterval)
	}
	return nil
}

// Address returns the listen address for the demo server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, itoa(c.Server.Port))
}

// WaitTimeout returns the parsed payload wait budget.
func (c *Config) WaitTimeout() time.Duration {
	d, err := time.ParseDuration(c.Hydration.WaitTimeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultWaitTimeout)
	}
	return d
}

// PayloadPollInterval returns the parsed payload poll cadence.
func (c *Config) PayloadPollInterval() time.Duration {
	d, err := time.ParseDuration(c.Hydration.PollInterval)
	if err != nil {
		d, _ = time.ParseDuration(DefaultPollInterval)
	}
	return d
}

// BlobPollInterval returns the parsed blob channel poll cadence.
func (c *Config) BlobPollInterval() time.Duration {
	d, err := time.ParseDuration(c.Channel.Blob.PollInterval)
	if err != nil {
		d, _ = time.ParseDuration(DefaultBlobPollInterval)
	}
	return d
}

// CrossIsland reports the cross-island toggle, defaulting to enabled.
func (c *Config) CrossIsland() bool {
	if c.Sync.CrossIsland == nil {
		return true
	}
	return *c.Sync.CrossIsland
}

// CrossTab reports the cross-tab toggle, defaulting to enabled.
func (c *Config) CrossTab() bool {
	if c.Sync.CrossTab == nil {
		return true
	}
	return *c.Sync.CrossTab
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	// Reverse
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
