package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Endpoint EndpointConfig `yaml:"endpoint" json:"endpoint"`
	Upload   UploadConfig   `yaml:"upload" json:"upload"`
	Decode   DecodeConfig   `yaml:"decode" json:"decode"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Server   ServerConfig   `yaml:"server" json:"server"`
}

// EndpointConfig locates the detection service
type EndpointConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url"`         // explicit base, wins when set
	OriginHost  string        `yaml:"origin_host" json:"origin_host"`   // host the client runs on
	ServiceHost string        `yaml:"service_host" json:"service_host"` // service hostname off loopback
	Port        int           `yaml:"port" json:"port"`                 // service port
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`           // 0 leaves it to the transport
}

// UploadConfig limits what may be submitted
type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"` // bytes, 0 disables the check
}

// DecodeConfig controls response validation
type DecodeConfig struct {
	// Strict rejects success bodies that do not match the response schema
	Strict bool `yaml:"strict" json:"strict"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// WatchConfig configures the watch command
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// StorageConfig configures the run history database
type StorageConfig struct {
	HistoryEnabled bool   `yaml:"history_enabled" json:"history_enabled"`
	HistoryPath    string `yaml:"history_path" json:"history_path"`
}

// ServerConfig configures the local upload page
type ServerConfig struct {
	Addr        string `yaml:"addr" json:"addr"`
	MetricsPath string `yaml:"metrics_path" json:"metrics_path"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Endpoint: EndpointConfig{
			BaseURL:     "",
			OriginHost:  "localhost",
			ServiceHost: "backend",
			Port:        8000,
			Timeout:     0,
		},
		Upload: UploadConfig{
			MaxFileSize: 50 << 20, // 50MB
		},
		Decode: DecodeConfig{
			Strict: false,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			HistoryEnabled: true,
			HistoryPath:    "~/.cache/logdetect/history.db",
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			MetricsPath: "/metrics",
		},
	}
}

// loopbackHosts are origin hosts that map the service to localhost
var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"[::1]":     true,
}

// IsLoopback reports whether host names the local machine
func IsLoopback(host string) bool {
	return loopbackHosts[strings.ToLower(strings.TrimSpace(host))]
}

// ResolveBaseURL returns the detection service base URL. An explicit
// base_url wins; otherwise a loopback origin talks to localhost and any
// other origin talks to the service host.
func ResolveBaseURL(e EndpointConfig) string {
	if base := strings.TrimSpace(e.BaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}

	host := e.ServiceHost
	if IsLoopback(e.OriginHost) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(e.Port))
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateEndpointConfig(); err != nil {
		return err
	}
	if err := c.validateUploadConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateWatchConfig(); err != nil {
		return err
	}
	if err := c.validateStorageConfig(); err != nil {
		return err
	}
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	return nil
}

// validateEndpointConfig validates endpoint-related configuration
func (c *Config) validateEndpointConfig() error {
	if c.Endpoint.BaseURL != "" {
		u, err := url.Parse(c.Endpoint.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid base_url scheme: %s (must be http or https)", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("base_url must include a host")
		}
		return c.validateTimeout()
	}

	if c.Endpoint.Port < 1 || c.Endpoint.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if !IsLoopback(c.Endpoint.OriginHost) && strings.TrimSpace(c.Endpoint.ServiceHost) == "" {
		return fmt.Errorf("service_host is required when origin_host is not loopback")
	}
	return c.validateTimeout()
}

func (c *Config) validateTimeout() error {
	if c.Endpoint.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// validateUploadConfig validates upload limits
func (c *Config) validateUploadConfig() error {
	if c.Upload.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// validateWatchConfig validates watch-related configuration
func (c *Config) validateWatchConfig() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("debounce must be non-negative")
	}
	return nil
}

// validateStorageConfig validates history storage configuration
func (c *Config) validateStorageConfig() error {
	if c.Storage.HistoryEnabled && strings.TrimSpace(c.Storage.HistoryPath) == "" {
		return fmt.Errorf("history_path is required when history is enabled")
	}
	return nil
}

// validateServerConfig validates the local server configuration
func (c *Config) validateServerConfig() error {
	if c.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
			return fmt.Errorf("invalid server addr: %w", err)
		}
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return fmt.Errorf("metrics_path must start with /")
	}
	return nil
}
