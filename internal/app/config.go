// Package app wires the live trading process together.
package app

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/builder"
	"github.com/rxtech-lab/argo-pairs/internal/trading/live"
	tradingprovider "github.com/rxtech-lab/argo-pairs/internal/trading/provider"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	argoStrategy "github.com/rxtech-lab/argo-pairs/pkg/strategy"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment overrides. binance.api_key is read from
// ARGO_BINANCE_API_KEY.
const EnvPrefix = "ARGO"

const (
	DefaultAPIAddress = ":8080"
	DefaultDataPath   = "results"
	DefaultLogLevel   = "info"
)

// secretKeys are bound to the environment even when the file leaves them out.
var secretKeys = []string{"binance.api_key", "binance.secret_key"}

type APIConfig struct {
	// Address of the status server. Empty disables it.
	Address string `mapstructure:"address" yaml:"address" json:"address"`
}

// Config is the configuration of the live process.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	// DataPath is the root of the session folders.
	DataPath string                                `mapstructure:"data_path" yaml:"data_path" json:"data_path" validate:"required"`
	API      APIConfig                             `mapstructure:"api" yaml:"api" json:"api"`
	Binance  tradingprovider.BinanceProviderConfig `mapstructure:"binance" yaml:"binance" json:"binance"`
	Live     live.Config                           `mapstructure:"live" yaml:"live" json:"live"`
	Strategy builder.StrategyConfig                `mapstructure:"strategy" yaml:"strategy" json:"strategy"`
}

// LoadConfig reads the YAML file at path, applies ARGO_ environment
// overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("data_path", DefaultDataPath)
	v.SetDefault("api.address", DefaultAPIAddress)
	v.SetDefault("live.leverage", 1)

	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to bind %s", key)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	config := Config{Strategy: builder.DefaultStrategyConfig()}
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := validator.New().StructPartial(c, "LogLevel", "DataPath"); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := c.Binance.Validate(); err != nil {
		return err
	}

	if err := c.Live.Validate(); err != nil {
		return err
	}

	return c.Strategy.Validate()
}

// Level returns the zap level of LogLevel.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}

	return level
}

// GenerateSchemaJSON returns the JSON schema of the live config file. Keys
// follow the mapstructure tags, which are the ones viper reads.
func GenerateSchemaJSON() (string, error) {
	reflector := argoStrategy.NewReflector()
	reflector.FieldNameTag = "mapstructure"

	schema := reflector.Reflect(&Config{})
	schema.Title = "live-config"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
