package config

import "time"

// Default values used when neither files nor environment set them.
const (
	DefaultDomain      = "login"
	DefaultAPIVersion  = "59.0"
	DefaultTimeout     = 60 * time.Second
	DefaultHost        = "localhost"
	DefaultPort        = 8090
	DefaultMetricsAddr = "127.0.0.1:9090"
)

// GetDefaultConfig returns the built-in configuration: stdio transport, no
// metrics, info-level text logs, and no credentials.
func GetDefaultConfig() Config {
	return Config{
		Salesforce: SalesforceConfig{
			Domain:     DefaultDomain,
			APIVersion: DefaultAPIVersion,
			Timeout:    DefaultTimeout,
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      DefaultHost,
			Port:      DefaultPort,
		},
		Metrics: MetricsConfig{
			Addr: DefaultMetricsAddr,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
