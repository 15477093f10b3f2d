// Package settings loads application settings. Environment variables win
// over the config file, which wins over built-in defaults.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
)

// EnvPrefix prefixes every environment override, e.g. PROTONLENS_STORE_PATH.
const EnvPrefix = "PROTONLENS"

type Settings struct {
	Logging   LoggingSettings  `mapstructure:"logging"`
	Store     StoreSettings    `mapstructure:"store"`
	Pipeline  PipelineSettings `mapstructure:"pipeline"`
	API       APISettings      `mapstructure:"api"`
	Resources ResourceSettings `mapstructure:"resources"`
	Metrics   MetricsSettings  `mapstructure:"metrics"`
}

type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type StoreSettings struct {
	Path string `mapstructure:"path"`
}

type PipelineSettings struct {
	Workers int `mapstructure:"workers"`
}

type APISettings struct {
	BaseURL           string        `mapstructure:"base_url"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// ResourceSettings override the embedded linguistic resources. Empty paths
// keep the defaults.
type ResourceSettings struct {
	Stoplist   string `mapstructure:"stoplist"`
	Topics     string `mapstructure:"topics"`
	Exceptions string `mapstructure:"exceptions"`
}

type MetricsSettings struct {
	Textfile string `mapstructure:"textfile"`
}

// Load reads settings. An empty path searches for protonlens.yaml in the
// working directory and ./config; a missing file there is not an error.
func Load(path string) (*Settings, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("protonlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("store.path", "./data/protonlens.db")

	v.SetDefault("pipeline.workers", 0)

	v.SetDefault("api.base_url", "https://protondb.max-p.me")
	v.SetDefault("api.requests_per_second", 5.0)
	v.SetDefault("api.burst", 1)
	v.SetDefault("api.retry_attempts", 3)
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("resources.stoplist", "")
	v.SetDefault("resources.topics", "")
	v.SetDefault("resources.exceptions", "")

	v.SetDefault("metrics.textfile", "")
}

// Validate rejects settings no component can run with.
func (s *Settings) Validate() error {
	switch {
	case s.Pipeline.Workers < 0:
		return fmt.Errorf("%w: pipeline.workers must not be negative", internalerr.ErrInvalidConfig)
	case s.API.BaseURL == "":
		return fmt.Errorf("%w: api.base_url is required", internalerr.ErrInvalidConfig)
	case s.API.RequestsPerSecond <= 0:
		return fmt.Errorf("%w: api.requests_per_second must be positive", internalerr.ErrInvalidConfig)
	case s.API.Burst < 1:
		return fmt.Errorf("%w: api.burst must be at least 1", internalerr.ErrInvalidConfig)
	case s.Store.Path == "":
		return fmt.Errorf("%w: store.path is required", internalerr.ErrInvalidConfig)
	}
	return nil
}
