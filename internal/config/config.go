// Package config resolves client settings from flags, environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by Load. Environment variables use the RESEARCHRAG_ prefix, e.g.
// RESEARCHRAG_ENDPOINT or RESEARCHRAG_DOWNLOAD_DIR.
const (
	KeyEndpoint    = "endpoint"
	KeyTimeout     = "timeout"
	KeyDownloadDir = "download_dir"
	KeyLogFile     = "log_file"
	KeyLogLevel    = "log_level"
	KeyUserAgent   = "user_agent"
)

const (
	EnvPrefix = "RESEARCHRAG"
	fileName  = "researchrag"
)

// Config is the resolved client configuration.
type Config struct {
	Endpoint    string
	Timeout     time.Duration
	DownloadDir string
	LogFile     string
	LogLevel    string
	UserAgent   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEndpoint, "http://localhost:8000")
	v.SetDefault(KeyTimeout, 60*time.Second)
	v.SetDefault(KeyDownloadDir, ".")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyUserAgent, "researchrag/0.1")
}

// Init points v at the config file and environment. An explicit cfgFile must exist; otherwise
// ./researchrag.yaml and ~/.config/researchrag/researchrag.yaml are tried. It returns the file
// used, if any.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", fileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load reads the resolved settings out of v and validates them.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Endpoint:    strings.TrimSpace(v.GetString(KeyEndpoint)),
		Timeout:     v.GetDuration(KeyTimeout),
		DownloadDir: strings.TrimSpace(v.GetString(KeyDownloadDir)),
		LogFile:     strings.TrimSpace(v.GetString(KeyLogFile)),
		LogLevel:    strings.TrimSpace(v.GetString(KeyLogLevel)),
		UserAgent:   strings.TrimSpace(v.GetString(KeyUserAgent)),
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "."
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the transport cannot use.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint must not be empty")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint %q must use http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q has no host", c.Endpoint)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
