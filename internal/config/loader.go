package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvUsername      = "SALESFORCE_USERNAME"
	EnvPassword      = "SALESFORCE_PASSWORD"
	EnvSecurityToken = "SALESFORCE_SECURITY_TOKEN"
	EnvDomain        = "SALESFORCE_DOMAIN"
	EnvAPIVersion    = "SALESFORCE_API_VERSION"
	EnvInstanceURL   = "SALESFORCE_INSTANCE_URL"
	EnvClientID      = "SALESFORCE_CLIENT_ID"
	EnvClientSecret  = "SALESFORCE_CLIENT_SECRET"
	EnvTimeout       = "SALESFORCE_TIMEOUT"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd
var osGetenv = os.Getenv

const (
	userConfigDir    = ".config/sfmcp"
	projectConfigDir = ".sfmcp"
	configFileName   = "config.yaml"
	dotEnvFileName   = ".env"
)

// LoadConfig loads the sfmcp configuration by layering default, user, project
// and environment settings.
func LoadConfig() (Config, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		config, err = mergeFileIfExists(config, userConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		config, err = mergeFileIfExists(config, projectConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return applyEnv(config, osGetenv)
}

// LoadConfigFromPath loads defaults, then the single file at path, then the
// environment. The file must exist.
func LoadConfigFromPath(path string) (Config, error) {
	fileConfig, err := loadConfigFromFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	config := mergeConfigs(GetDefaultConfig(), fileConfig)

	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return applyEnv(config, osGetenv)
}

var getUserConfigPath = func() (string, error) {
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadDotEnv reads .env from the working directory. Variables already present
// in the environment win. A missing file is not an error.
var loadDotEnv = defaultLoadDotEnv

func defaultLoadDotEnv() error {
	wd, err := osGetwd()
	if err != nil {
		return nil
	}
	path := filepath.Join(wd, dotEnvFileName)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

func mergeFileIfExists(base Config, path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return Config{}, err
	}
	return mergeConfigs(base, overlay), nil
}

// loadConfigFromFile loads a Config from a YAML file, expanding ${VAR}
// references first.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	expanded := expandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// expandEnv replaces ${VAR} and ${VAR:-default} with values from the environment.
func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		name, def, hasDefault := strings.Cut(key, ":-")
		if v := osGetenv(name); v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return ""
	})
}

// mergeConfigs merges 'overlay' config into 'base' config. Non-zero overlay
// values win.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	sf := overlay.Salesforce
	mergeString(&merged.Salesforce.Username, sf.Username)
	mergeString(&merged.Salesforce.Password, sf.Password)
	mergeString(&merged.Salesforce.SecurityToken, sf.SecurityToken)
	mergeString(&merged.Salesforce.Domain, sf.Domain)
	mergeString(&merged.Salesforce.InstanceURL, sf.InstanceURL)
	mergeString(&merged.Salesforce.APIVersion, sf.APIVersion)
	mergeString(&merged.Salesforce.ClientID, sf.ClientID)
	mergeString(&merged.Salesforce.ClientSecret, sf.ClientSecret)
	if sf.Timeout != 0 {
		merged.Salesforce.Timeout = sf.Timeout
	}

	mergeString(&merged.Server.Transport, overlay.Server.Transport)
	mergeString(&merged.Server.Host, overlay.Server.Host)
	if overlay.Server.Port != 0 {
		merged.Server.Port = overlay.Server.Port
	}

	// Enabled is a pointer so a project file can turn metrics off again
	if overlay.Metrics.Enabled != nil {
		enabled := *overlay.Metrics.Enabled
		merged.Metrics.Enabled = &enabled
	}
	mergeString(&merged.Metrics.Addr, overlay.Metrics.Addr)

	mergeString(&merged.Logging.Level, overlay.Logging.Level)
	mergeString(&merged.Logging.Format, overlay.Logging.Format)
	mergeString(&merged.Logging.File, overlay.Logging.File)

	return merged
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// applyEnv overlays SALESFORCE_* environment variables on config.
func applyEnv(config Config, getenv func(string) string) (Config, error) {
	sf := &config.Salesforce
	mergeString(&sf.Username, getenv(EnvUsername))
	mergeString(&sf.Password, getenv(EnvPassword))
	mergeString(&sf.SecurityToken, getenv(EnvSecurityToken))
	mergeString(&sf.Domain, getenv(EnvDomain))
	mergeString(&sf.APIVersion, getenv(EnvAPIVersion))
	mergeString(&sf.InstanceURL, getenv(EnvInstanceURL))
	mergeString(&sf.ClientID, getenv(EnvClientID))
	mergeString(&sf.ClientSecret, getenv(EnvClientSecret))

	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		sf.Timeout = d
	}
	return config, nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
