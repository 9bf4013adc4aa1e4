package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pairs/internal/accounting"
	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/builder"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	argoStrategy "github.com/rxtech-lab/argo-pairs/pkg/strategy"
)

const (
	DefaultInitialDeposit = 30000.0
	DefaultLeverage       = 4
)

type BacktestEngineV1Config struct {
	// EngineVersion pins the engine version the config was written for. Empty means any.
	EngineVersion  string                     `yaml:"engine_version" json:"engine_version,omitempty" jsonschema:"title=Engine Version,description=Engine version the config was written for"`
	InitialDeposit float64                    `yaml:"initial_deposit" json:"initial_deposit" validate:"gt=0" jsonschema:"title=Initial Deposit,description=Starting account value in USD,minimum=0,default=30000"`
	Leverage       int                        `yaml:"leverage" json:"leverage" validate:"min=1" jsonschema:"title=Leverage,description=Notional exposure allowed per unit of equity,minimum=1,default=4"`
	Broker         commission_fee.Broker      `yaml:"broker" json:"broker" validate:"oneof=interactive_broker zero_commission" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	// PeriodsPerYear annualizes the Sharpe ratio; 0 reports the per-period ratio.
	PeriodsPerYear int                     `yaml:"periods_per_year" json:"periods_per_year" validate:"gte=0" jsonschema:"title=Periods Per Year,description=Replayed rows per year used to annualize the Sharpe ratio,minimum=0,default=252"`
	Strategy       builder.StrategyConfig `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Keys missing from the document keep the values already set on c.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(any) error) error {
	type Config struct {
		EngineVersion  string                 `yaml:"engine_version"`
		InitialDeposit float64                `yaml:"initial_deposit"`
		Leverage       int                    `yaml:"leverage"`
		Broker         commission_fee.Broker  `yaml:"broker"`
		StartTime      *time.Time             `yaml:"start_time"`
		EndTime        *time.Time             `yaml:"end_time"`
		PeriodsPerYear int                    `yaml:"periods_per_year"`
		Strategy       builder.StrategyConfig `yaml:"strategy"`
	}

	config := Config{
		EngineVersion:  c.EngineVersion,
		InitialDeposit: c.InitialDeposit,
		Leverage:       c.Leverage,
		Broker:         c.Broker,
		PeriodsPerYear: c.PeriodsPerYear,
		Strategy:       c.Strategy,
	}

	if err := unmarshal(&config); err != nil {
		return err
	}

	c.EngineVersion = config.EngineVersion
	c.InitialDeposit = config.InitialDeposit
	c.Leverage = config.Leverage
	c.Broker = config.Broker
	c.PeriodsPerYear = config.PeriodsPerYear
	c.Strategy = config.Strategy

	if config.StartTime != nil {
		c.StartTime = optional.Some(config.StartTime.UTC())
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(config.EndTime.UTC())
	}

	return nil
}

// Validate validates the engine settings and the strategy config.
func (c *BacktestEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeBacktestConfigError, "end time is before start time")
	}

	return c.Strategy.Validate()
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := argoStrategy.NewReflector(func(t reflect.Type) *jsonschema.Schema {
		if t.String() == "optional.Option[time.Time]" {
			return &jsonschema.Schema{
				Type:   "string",
				Format: "date-time",
			}
		}

		if strings.Contains(t.String(), "commission_fee.Broker") {
			return &jsonschema.Schema{
				Type: "string",
				Enum: commission_fee.AllBrokers,
			}
		}

		if strings.Contains(t.String(), "builder.StrategyType") {
			return &jsonschema.Schema{
				Type: "string",
				Enum: builder.AllStrategyTypes,
			}
		}

		return nil
	})
	reflector.ExpandedStruct = true
	reflector.AllowAdditionalProperties = false

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a zero commission config trading first against second.
func TestConfig(first, second string, strategyType builder.StrategyType) BacktestEngineV1Config {
	config := EmptyConfig()
	config.InitialDeposit = 10000
	config.Leverage = 2
	config.Broker = commission_fee.BrokerZero
	config.Strategy.Type = strategyType
	config.Strategy.Symbols = []string{first, second}

	return config
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		EngineVersion:  "",
		InitialDeposit: DefaultInitialDeposit,
		Leverage:       DefaultLeverage,
		Broker:         commission_fee.BrokerInteractiveBroker,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
		PeriodsPerYear: accounting.DefaultPeriodsPerYear,
		Strategy:       builder.DefaultStrategyConfig(),
	}
}
