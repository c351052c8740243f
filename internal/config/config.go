// Package config reads and writes the TOML configuration file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/logger"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "radius_admin.toml"

// EnvPrefix prefixes environment overrides, e.g. RADIUS_ADMIN_DATABASE_SERVER.
const EnvPrefix = "RADIUS_ADMIN"

const redacted = "********"

var validate = validator.New()

// Default returns the configuration written when no file exists.
func Default() Config {
	return Config{
		Database: Database{
			Driver:         "sqlserver",
			Server:         "localhost",
			Port:           1433,
			Database:       "radius",
			Username:       "sa",
			Autoconnect:    true,
			ConnectTimeout: 10,
			TestTimeout:    5,
			QueryTimeout:   30,
		},
		Application: Application{
			WindowWidth:  1000,
			WindowHeight: 650,
			LogFile:      "radius_manager.log",
			Theme:        "clam",
		},
		Log: logger.Log{
			LogLevel:    "info",
			AppName:     "radius-admin",
			ServiceName: "radius-admin",
			BufferSize:  logger.DefaultBufferSize,
			Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			File: logger.LogFile{
				Path:           "log",
				AccessLog:      "access.log",
				AccessMaxSize:  10,
				InfoMaxSize:    10,
				InfoMaxBackups: 3,
			},
		},
		Webserver: Webserver{
			Port:         8080,
			ShutDownTime: 5,
		},
	}
}

// Load reads the configuration at path. A missing file is created with
// Default values first. Environment variables override file values.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = Save(path, Default()); err != nil {
			return Config{}, err
		}

		log.Info().Str("path", path).Msg("created default configuration file")
	}

	v, err := newViper()
	if err != nil {
		return Config{}, err
	}

	v.SetConfigFile(path)

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}

	var c Config
	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config file")
	}

	return c, Validate(c)
}

// newViper returns a viper instance with every key of Default registered,
// so that environment overrides apply to keys missing in the file.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	data, err := toml.Marshal(Default())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode defaults")
	}

	var defaults map[string]any
	if err = toml.Unmarshal(data, &defaults); err != nil {
		return nil, errors.Wrap(err, "failed to decode defaults")
	}

	setDefaults(v, "", defaults)

	return v, nil
}

func setDefaults(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}

		v.SetDefault(key, val)
	}
}

// Save writes every key of c to path as TOML.
func Save(path string, c Config) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err = os.MkdirAll(dir, 0o750); err != nil { //nolint: mnd
			return errors.Wrap(err, "failed to create config directory")
		}
	}

	if err = os.WriteFile(path, data, 0o600); err != nil { //nolint: mnd
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Dump renders c as TOML. Secrets are masked unless showSecrets is set.
func Dump(c Config, showSecrets bool) (string, error) {
	if !showSecrets {
		if c.Database.Password != "" {
			c.Database.Password = redacted
		}

		if c.Webserver.APIKeyHash != "" {
			c.Webserver.APIKeyHash = redacted
		}
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode config")
	}

	return string(data), nil
}

// Validate checks the settings needed to connect and serve.
func Validate(c Config) error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	return nil
}
