package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when --config is not given.
const DefaultConfigFile = "uncss.yaml"

// Config holds all uncss configuration.
type Config struct {
	// Reduction service the client talks to
	Service ServiceConfig `yaml:"service"`

	// Embedded or standalone reduction server
	Server ServerConfig `yaml:"server"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServiceConfig configures the reduction client.
type ServiceConfig struct {
	// Endpoint of POST /api/uncss. Empty starts an embedded server.
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// ServerConfig configures the reduction server.
type ServerConfig struct {
	ListenAddr      string   `yaml:"listen_addr"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	Ignore          []string `yaml:"ignore"` // selectors always kept, "/re/" for patterns
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto, light, dark
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Endpoint: "",
			Timeout:  "30s",
		},
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:3000",
			MaxBodyBytes:    4 << 20,
			ShutdownTimeout: "5s",
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			File:      "uncss.log",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("UNCSS_ENDPOINT"); ok {
		c.Service.Endpoint = v
	}
	if v := os.Getenv("UNCSS_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("UNCSS_DEBUG"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = on
		}
	}
	if v := os.Getenv("UNCSS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetServiceTimeout returns the reduction request timeout as a duration.
func (c *Config) GetServiceTimeout() time.Duration {
	d, err := time.ParseDuration(c.Service.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the server shutdown grace period as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Embedded reports whether the client should start its own server.
func (c *Config) Embedded() bool {
	return c.Service.Endpoint == ""
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.Endpoint != "" {
		u, err := url.Parse(c.Service.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid service endpoint: %q (want http(s)://host/path)", c.Service.Endpoint)
		}
	}
	if _, err := time.ParseDuration(c.Service.Timeout); err != nil {
		return fmt.Errorf("invalid service timeout %q: %w", c.Service.Timeout, err)
	}
	if _, _, err := net.SplitHostPort(c.Server.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Server.ListenAddr, err)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	if _, err := c.Logging.ZapLevel(); err != nil {
		return err
	}

	return nil
}
