package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultNamespace       = "_"
	DefaultTimeout         = 30 * time.Second
	DefaultBlockingTimeout = 65 * time.Second
	DefaultUserAgent       = "whisk-action-client"
)

// Config carries everything the client needs to reach the control plane.
// It is always passed in explicitly; the client never reads process-wide
// state on its own.
type Config struct {
	// Host is the control plane endpoint; https is assumed when no
	// scheme is given.
	Host string `mapstructure:"apihost"`
	// AuthKey is the caller-supplied credential pair, "key:secret".
	AuthKey string `mapstructure:"auth"`
	// Namespace is the default tenant scope for operations that do not
	// name one.
	Namespace string `mapstructure:"namespace"`
	// Timeout bounds ordinary CRUD calls. BlockingTimeout bounds blocking
	// invocations and must exceed the server's wait window.
	Timeout         time.Duration `mapstructure:"timeout"`
	BlockingTimeout time.Duration `mapstructure:"blocking_timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
}

var envKeys = []string{"apihost", "auth", "namespace", "timeout", "blocking_timeout", "user_agent"}

// FromEnv loads and validates configuration from WHISK_* environment
// variables (WHISK_APIHOST, WHISK_AUTH, WHISK_NAMESPACE, WHISK_TIMEOUT,
// WHISK_BLOCKING_TIMEOUT, WHISK_USER_AGENT).
func FromEnv() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WHISK")
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	v.SetDefault("namespace", DefaultNamespace)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("blocking_timeout", DefaultBlockingTimeout)
	v.SetDefault("user_agent", DefaultUserAgent)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the fields the client cannot default.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("api host is required")
	}
	if !strings.Contains(c.AuthKey, ":") {
		return fmt.Errorf("auth credential must be a key:secret pair")
	}
	if c.Timeout < 0 || c.BlockingTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// BaseURL returns the host with an https scheme applied when none was
// given, trailing slash trimmed.
func (c Config) BaseURL() string {
	host := strings.TrimRight(strings.TrimSpace(c.Host), "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}

// Credentials splits the key:secret pair.
func (c Config) Credentials() (string, string) {
	parts := strings.SplitN(c.AuthKey, ":", 2)
	if len(parts) != 2 {
		return c.AuthKey, ""
	}
	return parts[0], parts[1]
}
