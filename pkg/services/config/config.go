package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/viper"
)

// APITokenEnvVar overrides config.apiToken when set, so the credential can be
// kept out of the config file.
const APITokenEnvVar = "SYSDIG_API_TOKEN"

type Settings struct {
	LogLevel    string `mapstructure:"logLevel"`
	HTTPPort    int    `mapstructure:"httpPort"`
	MetricsPath string `mapstructure:"metricsPath"`
}

type Posture struct {
	APIToken             string        `mapstructure:"apiToken"`
	RegionURL            string        `mapstructure:"regionURL"`
	PostureAPIEndpoint   string        `mapstructure:"postureAPIEndpoint"`
	NoDataThresholdHours int           `mapstructure:"noDataThresholdHours"`
	CollectionInterval   time.Duration `mapstructure:"collectionInterval"`
	FetchTimeout         time.Duration `mapstructure:"fetchTimeout"`
}

type Config struct {
	Settings Settings `mapstructure:"settings"`
	Posture  Posture  `mapstructure:"config"`
}

// Load reads and validates the exporter configuration from the given YAML
// file. The returned config is ready to use: defaults are applied and the
// API token may come from the environment instead of the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("settings.metricsPath", "/metrics")
	v.SetDefault("config.collectionInterval", "5m")
	v.SetDefault("config.fetchTimeout", "10s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if token := os.Getenv(APITokenEnvVar); token != "" {
		cfg.Posture.APIToken = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Settings.LogLevel == "" {
		return fmt.Errorf("settings.logLevel is required")
	}
	if c.Settings.HTTPPort < 1 || c.Settings.HTTPPort > 65535 {
		return fmt.Errorf("settings.httpPort must be a valid TCP port, got %d", c.Settings.HTTPPort)
	}
	if c.Settings.MetricsPath == "" || c.Settings.MetricsPath[0] != '/' {
		return fmt.Errorf("settings.metricsPath must be an absolute URL path, got %q", c.Settings.MetricsPath)
	}

	if c.Posture.APIToken == "" {
		return fmt.Errorf("config.apiToken is required (or set %s)", APITokenEnvVar)
	}
	if c.Posture.RegionURL == "" {
		return fmt.Errorf("config.regionURL is required")
	}
	base, err := url.Parse(c.Posture.RegionURL)
	if err != nil {
		return fmt.Errorf("config.regionURL is not a valid URL: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("config.regionURL must be an absolute http(s) URL, got %q", c.Posture.RegionURL)
	}
	if c.Posture.PostureAPIEndpoint == "" {
		return fmt.Errorf("config.postureAPIEndpoint is required")
	}
	if c.Posture.NoDataThresholdHours <= 0 {
		return fmt.Errorf("config.noDataThresholdHours must be positive, got %d", c.Posture.NoDataThresholdHours)
	}
	if c.Posture.CollectionInterval <= 0 {
		return fmt.Errorf("config.collectionInterval must be positive, got %s", c.Posture.CollectionInterval)
	}
	if c.Posture.FetchTimeout <= 0 {
		return fmt.Errorf("config.fetchTimeout must be positive, got %s", c.Posture.FetchTimeout)
	}
	return nil
}

// NoDataThreshold returns the staleness cutoff as a duration.
func (c *Config) NoDataThreshold() time.Duration {
	return time.Duration(c.Posture.NoDataThresholdHours) * time.Hour
}
