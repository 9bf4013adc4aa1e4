package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/builder"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v2"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestEmptyConfig() {
	config := EmptyConfig()

	suite.Equal(DefaultInitialDeposit, config.InitialDeposit)
	suite.Equal(DefaultLeverage, config.Leverage)
	suite.Equal(commission_fee.BrokerInteractiveBroker, config.Broker)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
	suite.Equal(252, config.PeriodsPerYear)
	suite.Equal(builder.StrategyTypeKalman, config.Strategy.Type)
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLKeepsDefaults() {
	config := EmptyConfig()

	err := yaml.Unmarshal([]byte(`
leverage: 2
start_time: 2024-01-02T00:00:00Z
strategy:
  type: bollinger
  symbols: [USO, GLD]
  bollinger:
    lookback: 10
`), &config)
	suite.Require().NoError(err)

	suite.Equal(DefaultInitialDeposit, config.InitialDeposit)
	suite.Equal(2, config.Leverage)
	suite.True(config.StartTime.IsSome())
	suite.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
	suite.True(config.EndTime.IsNone())
	suite.Equal(builder.StrategyTypeBollinger, config.Strategy.Type)
	suite.Equal(10, config.Strategy.Bollinger.Lookback)
	suite.Equal(1.0, config.Strategy.Bollinger.EntryZScore)
	suite.True(config.Strategy.Criteria.NoOpenOrdersEntry)
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestValidate() {
	tests := []struct {
		name   string
		modify func(c *BacktestEngineV1Config)
		code   errors.ErrorCode
	}{
		{"zero deposit", func(c *BacktestEngineV1Config) { c.InitialDeposit = 0 }, errors.ErrCodeBacktestConfigError},
		{"zero leverage", func(c *BacktestEngineV1Config) { c.Leverage = 0 }, errors.ErrCodeBacktestConfigError},
		{"unknown broker", func(c *BacktestEngineV1Config) { c.Broker = "robinhood" }, errors.ErrCodeBacktestConfigError},
		{"negative periods", func(c *BacktestEngineV1Config) { c.PeriodsPerYear = -1 }, errors.ErrCodeBacktestConfigError},
		{"missing symbols", func(c *BacktestEngineV1Config) { c.Strategy.Symbols = nil }, errors.ErrCodeBacktestConfigError},
		{"same symbols", func(c *BacktestEngineV1Config) { c.Strategy.Symbols = []string{"GLD", "GLD"} }, errors.ErrCodeStrategyConfigError},
		{"reversed range", func(c *BacktestEngineV1Config) {
			c.StartTime = optional.Some(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
			c.EndTime = optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		}, errors.ErrCodeBacktestConfigError},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := TestConfig("USO", "GLD", builder.StrategyTypeKalman)
			suite.Require().NoError(config.Validate())

			tc.modify(&config)
			err := config.Validate()
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *ConfigTestSuite) TestTestConfig() {
	config := TestConfig("USO", "GLD", builder.StrategyTypeBollinger)

	suite.Equal(10000.0, config.InitialDeposit)
	suite.Equal(2, config.Leverage)
	suite.Equal(commission_fee.BrokerZero, config.Broker)
	suite.Equal([]string{"USO", "GLD"}, config.Strategy.Symbols)
	suite.Equal(builder.StrategyTypeBollinger, config.Strategy.Type)
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := &BacktestEngineV1Config{}
	schema, err := config.GenerateSchema()

	suite.NoError(err)
	suite.NotNil(schema)
	suite.Equal("backtest-engine-v1-config", schema.Title)
	suite.Equal("Configuration schema for BacktestEngineV1", schema.Description)
	suite.Equal("http://json-schema.org/draft-07/schema#", schema.Version)
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := &BacktestEngineV1Config{}
	schemaJSON, err := config.GenerateSchemaJSON()

	suite.NoError(err)
	suite.NotEmpty(schemaJSON)

	var parsed map[string]any
	suite.NoError(json.Unmarshal([]byte(schemaJSON), &parsed))

	properties, ok := parsed["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "initial_deposit")
	suite.Contains(properties, "leverage")
	suite.Contains(properties, "start_time")
	suite.Contains(properties, "strategy")

	startTime, ok := properties["start_time"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("string", startTime["type"])
	suite.Equal("date-time", startTime["format"])

	broker, ok := properties["broker"].(map[string]any)
	suite.Require().True(ok)
	suite.ElementsMatch([]any{"interactive_broker", "zero_commission"}, broker["enum"])
}
