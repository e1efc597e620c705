package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingCredentials is returned by Validate when any of the three
// Salesforce credentials is absent.
var ErrMissingCredentials = errors.New("missing required Salesforce credentials")

// Transport names accepted by ServerConfig.Transport.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config is the top-level sfmcp configuration.
type Config struct {
	Salesforce SalesforceConfig `yaml:"salesforce"`
	Server     ServerConfig     `yaml:"server"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SalesforceConfig holds the org credentials and API settings.
type SalesforceConfig struct {
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	SecurityToken string `yaml:"securityToken"`

	// Domain is the login host prefix: "login", "test" or a My Domain name.
	Domain string `yaml:"domain"`
	// InstanceURL skips instance discovery when set; login still runs.
	InstanceURL string `yaml:"instanceUrl,omitempty"`
	APIVersion  string `yaml:"apiVersion"`

	// ClientID and ClientSecret switch session establishment to the OAuth
	// username-password flow.
	ClientID     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`

	Timeout time.Duration `yaml:"timeout"`
}

// UsesOAuth reports whether a connected app is configured.
func (s SalesforceConfig) UsesOAuth() bool {
	return s.ClientID != ""
}

// ServerConfig controls the MCP transport.
type ServerConfig struct {
	Transport string `yaml:"transport"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Addr    string `yaml:"addr"`
}

// IsEnabled returns the effective enabled flag.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled != nil && *m.Enabled
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// Validate checks that credentials are present and the transport is known.
func (c Config) Validate() error {
	var missing []string
	if c.Salesforce.Username == "" {
		missing = append(missing, EnvUsername)
	}
	if c.Salesforce.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if c.Salesforce.SecurityToken == "" {
		missing = append(missing, EnvSecurityToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: please set %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	if c.Salesforce.ClientID != "" && c.Salesforce.ClientSecret == "" {
		return fmt.Errorf("%s is set but %s is empty", EnvClientID, EnvClientSecret)
	}

	switch c.Server.Transport {
	case TransportStdio, TransportSSE:
	default:
		return fmt.Errorf("unsupported transport %q (supported: %s, %s)", c.Server.Transport, TransportStdio, TransportSSE)
	}
	return nil
}
