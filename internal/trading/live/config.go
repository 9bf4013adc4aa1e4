package live

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

const (
	DefaultHistoryTimeout = 30 * time.Second
	DefaultLookback       = 24 * time.Hour
)

// Config holds the account and history settings of a live trading context.
type Config struct {
	Leverage int `yaml:"leverage" mapstructure:"leverage" json:"leverage" validate:"gte=1"`
	// Lookback is how much minute history History asks the broker for.
	Lookback time.Duration `yaml:"lookback" mapstructure:"lookback" json:"lookback" validate:"gte=0"`
	// HistoryTimeout bounds a single History call.
	HistoryTimeout time.Duration `yaml:"history_timeout" mapstructure:"history_timeout" json:"historyTimeout" validate:"gte=0"`
}

// Validate validates the Config struct.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid live trading config", err)
	}

	return nil
}

func (c Config) withDefaults() Config {
	if c.Lookback == 0 {
		c.Lookback = DefaultLookback
	}

	if c.HistoryTimeout == 0 {
		c.HistoryTimeout = DefaultHistoryTimeout
	}

	return c
}
