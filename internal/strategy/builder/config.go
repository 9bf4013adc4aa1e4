package builder

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/kalman"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/meanreversion"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	argoStrategy "github.com/rxtech-lab/argo-pairs/pkg/strategy"
	"gopkg.in/yaml.v2"
)

type StrategyType string

const (
	StrategyTypeKalman    StrategyType = kalman.Name
	StrategyTypeBollinger StrategyType = meanreversion.Name
)

// AllStrategyTypes lists the strategies the builder knows.
var AllStrategyTypes = []any{StrategyTypeKalman, StrategyTypeBollinger}

type KalmanConfig struct {
	ErrorQueueSize      int     `yaml:"error_queue_size" json:"error_queue_size" mapstructure:"error_queue_size" validate:"min=2" jsonschema:"title=Error Queue Size,description=Number of filter errors kept for the entry band,minimum=2,default=30"`
	EntrySdMultiplier   float64 `yaml:"entry_sd_multiplier" json:"entry_sd_multiplier" mapstructure:"entry_sd_multiplier" validate:"gte=0" jsonschema:"title=Entry SD Multiplier,minimum=0,default=1"`
	ExitSdMultiplier    float64 `yaml:"exit_sd_multiplier" json:"exit_sd_multiplier" mapstructure:"exit_sd_multiplier" validate:"gte=0" jsonschema:"title=Exit SD Multiplier,minimum=0,default=0"`
	Delta               float64 `yaml:"delta" json:"delta" mapstructure:"delta" validate:"gte=0,lt=1" jsonschema:"title=Delta,description=Hedge ratio drift of the filter; 0 selects the default"`
	MeasurementVariance float64 `yaml:"measurement_variance" json:"measurement_variance" mapstructure:"measurement_variance" validate:"gte=0" jsonschema:"title=Measurement Variance,description=Observation noise of the filter; 0 selects the default"`
}

type BollingerConfig struct {
	Lookback        int     `yaml:"lookback" json:"lookback" mapstructure:"lookback" validate:"min=3" jsonschema:"title=Lookback,minimum=3,default=20"`
	EntryZScore     float64 `yaml:"entry_z_score" json:"entry_z_score" mapstructure:"entry_z_score" validate:"gte=0" jsonschema:"title=Entry Z-Score,minimum=0,default=1"`
	ExitZScore      float64 `yaml:"exit_z_score" json:"exit_z_score" mapstructure:"exit_z_score" jsonschema:"title=Exit Z-Score,default=0"`
	SeedFromHistory bool    `yaml:"seed_from_history" json:"seed_from_history" mapstructure:"seed_from_history" jsonschema:"title=Seed From History,description=Seed the z-score from the trading context history"`
}

// CriteriaConfig toggles the generic order and risk criteria.
type CriteriaConfig struct {
	NoOpenOrdersEntry bool `yaml:"no_open_orders_entry" json:"no_open_orders_entry" mapstructure:"no_open_orders_entry" jsonschema:"title=No Open Orders Entry,description=Only enter when no leg holds an order,default=true"`
	OpenOrdersExit    bool `yaml:"open_orders_exit" json:"open_orders_exit" mapstructure:"open_orders_exit" jsonschema:"title=Open Orders Exit,description=Only exit when every leg holds an order,default=true"`
	FilledOrdersExit  bool `yaml:"filled_orders_exit" json:"filled_orders_exit" mapstructure:"filled_orders_exit" jsonschema:"title=Filled Orders Exit,description=Only exit when every leg's order is filled"`
	NoPendingOrders   bool `yaml:"no_pending_orders" json:"no_pending_orders" mapstructure:"no_pending_orders" jsonschema:"title=No Pending Orders,description=Skip ticks while an order waits for a fill"`
	// StopLoss is the total unrealized P&L (in account currency) at or below
	// which the position is closed. Nil disables the stop loss.
	StopLoss *float64 `yaml:"stop_loss" json:"stop_loss,omitempty" mapstructure:"stop_loss" jsonschema:"title=Stop Loss,description=Close the position when its unrealized P&L falls to this amount"`
}

// StrategyConfig selects and parameterizes a pairs strategy.
type StrategyConfig struct {
	Type StrategyType `yaml:"type" json:"type" mapstructure:"type" validate:"required,oneof=kalman bollinger" jsonschema:"title=Type,enum=kalman,enum=bollinger"`
	// Symbols is the pair; the first symbol is the regressor.
	Symbols   []string        `yaml:"symbols" json:"symbols" mapstructure:"symbols" validate:"len=2,dive,required" jsonschema:"title=Symbols,minItems=2,maxItems=2"`
	Kalman    KalmanConfig    `yaml:"kalman" json:"kalman" mapstructure:"kalman"`
	Bollinger BollingerConfig `yaml:"bollinger" json:"bollinger" mapstructure:"bollinger"`
	Criteria  CriteriaConfig  `yaml:"criteria" json:"criteria" mapstructure:"criteria"`
}

// DefaultStrategyConfig returns a configuration with every default filled in.
// Parsers unmarshal on top of it so absent keys keep their defaults.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Type: StrategyTypeKalman,
		Kalman: KalmanConfig{
			ErrorQueueSize:    kalman.DefaultErrorQueueSize,
			EntrySdMultiplier: 1,
			ExitSdMultiplier:  0,
		},
		Bollinger: BollingerConfig{
			Lookback:    meanreversion.DefaultLookback,
			EntryZScore: meanreversion.DefaultEntryZScore,
			ExitZScore:  meanreversion.DefaultExitZScore,
		},
		Criteria: CriteriaConfig{
			NoOpenOrdersEntry: true,
			OpenOrdersExit:    true,
		},
	}
}

// Validate validates the StrategyConfig struct.
func (c *StrategyConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config", err)
	}

	if c.Symbols[0] == c.Symbols[1] {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "strategy needs two distinct symbols, got %s twice", c.Symbols[0])
	}

	return nil
}

// ParseStrategyConfig parses YAML on top of the defaults and validates it.
func ParseStrategyConfig(data []byte) (StrategyConfig, error) {
	config := DefaultStrategyConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return StrategyConfig{}, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse strategy config", err)
	}

	if err := config.Validate(); err != nil {
		return StrategyConfig{}, err
	}

	return config, nil
}

// LoadStrategyConfig reads and parses a YAML strategy config file.
func LoadStrategyConfig(path string) (StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StrategyConfig{}, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to read strategy config %s", path)
	}

	return ParseStrategyConfig(data)
}

// GenerateSchemaJSON returns the JSON schema of StrategyConfig.
func GenerateSchemaJSON() (string, error) {
	return argoStrategy.ToJSONSchema(StrategyConfig{})
}
