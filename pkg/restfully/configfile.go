package restfully

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/spf13/viper"
)

// LoadConfig reads a YAML configuration file and RESTFULLY_* environment
// variables on top of DefaultConfig. The RESTFULLY_CONFIG variable replaces
// path when set. A missing file is not an error when path is empty.
func LoadConfig(path string) (*Config, error) {
	if env := os.Getenv(constants.EnvConfigFile); env != "" {
		path = env
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("uri", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("retry_on_error", defaults.RetryOnError)
	v.SetDefault("wait_before_retry", defaults.WaitBeforeRetry)
	v.SetDefault("retry_non_idempotent", defaults.RetryNonIdempotent)
	v.SetDefault("guess_item_uris", defaults.GuessItemURIs)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("debug", false)

	if path != "" {
		v.SetConfigFile(path)

		err := v.ReadInConfig()
		if err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file %s: %w", path, err)
			}
		}
	}

	config := DefaultConfig()

	err := v.Unmarshal(config)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if types := v.GetString("media_types"); types != "" && len(config.MediaTypes) == 0 {
		config.MediaTypes = strings.Split(types, ",")
	}

	return config, nil
}

// LoadConfigWith loads the configuration file and lets every explicitly set
// field of explicit win over it.
func LoadConfigWith(path string, explicit *Config) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	return config.Override(explicit), nil
}
