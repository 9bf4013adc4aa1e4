package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/strategy/builder"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

const testConfig = `
log_level: debug
data_path: /tmp/argo
binance:
  api_key: file-key
  secret_key: file-secret
  order_poll_interval: 2s
live:
  leverage: 3
  history_timeout: 10s
strategy:
  type: bollinger
  symbols: [BTCUSDT, ETHUSDT]
  bollinger:
    lookback: 30
  criteria:
    stop_loss: -250
`

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *ConfigTestSuite) write(content string) string {
	path := filepath.Join(suite.dir, "live.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (suite *ConfigTestSuite) TestLoadConfig() {
	config, err := LoadConfig(suite.write(testConfig))
	suite.Require().NoError(err)

	suite.Equal("/tmp/argo", config.DataPath)
	suite.Equal(zapcore.DebugLevel, config.Level())
	suite.Equal(DefaultAPIAddress, config.API.Address)

	suite.Equal("file-key", config.Binance.ApiKey)
	suite.Equal(2*time.Second, config.Binance.OrderPollInterval)

	suite.Equal(3, config.Live.Leverage)
	suite.Equal(10*time.Second, config.Live.HistoryTimeout)

	suite.Equal(builder.StrategyTypeBollinger, config.Strategy.Type)
	suite.Equal([]string{"BTCUSDT", "ETHUSDT"}, config.Strategy.Symbols)
	suite.Equal(30, config.Strategy.Bollinger.Lookback)
	suite.Require().NotNil(config.Strategy.Criteria.StopLoss)
	suite.Equal(-250.0, *config.Strategy.Criteria.StopLoss)

	// Keys left out of the file keep the strategy defaults.
	defaults := builder.DefaultStrategyConfig()
	suite.Equal(defaults.Bollinger.EntryZScore, config.Strategy.Bollinger.EntryZScore)
	suite.Equal(defaults.Kalman.ErrorQueueSize, config.Strategy.Kalman.ErrorQueueSize)
	suite.True(config.Strategy.Criteria.NoOpenOrdersEntry)
}

func (suite *ConfigTestSuite) TestEnvironmentOverrides() {
	suite.T().Setenv("ARGO_BINANCE_API_KEY", "env-key")
	suite.T().Setenv("ARGO_BINANCE_SECRET_KEY", "env-secret")
	suite.T().Setenv("ARGO_LOG_LEVEL", "warn")

	config, err := LoadConfig(suite.write(`
strategy:
  symbols: [BTCUSDT, ETHUSDT]
`))
	suite.Require().NoError(err)

	suite.Equal("env-key", config.Binance.ApiKey)
	suite.Equal("env-secret", config.Binance.SecretKey)
	suite.Equal(zapcore.WarnLevel, config.Level())
	suite.Equal(DefaultDataPath, config.DataPath)
	suite.Equal(1, config.Live.Leverage)
	suite.Equal(builder.StrategyTypeKalman, config.Strategy.Type)
}

func (suite *ConfigTestSuite) TestLoadConfigErrors() {
	_, err := LoadConfig(filepath.Join(suite.dir, "missing.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{
			name:    "missing api key",
			content: "strategy:\n  symbols: [BTCUSDT, ETHUSDT]\n",
			code:    errors.ErrCodeInvalidConfiguration,
		},
		{
			name:    "bad log level",
			content: "log_level: loud\nbinance:\n  api_key: k\n  secret_key: s\nstrategy:\n  symbols: [BTCUSDT, ETHUSDT]\n",
			code:    errors.ErrCodeInvalidConfiguration,
		},
		{
			name:    "zero leverage",
			content: "binance:\n  api_key: k\n  secret_key: s\nlive:\n  leverage: 0\nstrategy:\n  symbols: [BTCUSDT, ETHUSDT]\n",
			code:    errors.ErrCodeInvalidConfiguration,
		},
		{
			name:    "one symbol",
			content: "binance:\n  api_key: k\n  secret_key: s\nstrategy:\n  symbols: [BTCUSDT]\n",
			code:    errors.ErrCodeStrategyConfigError,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := LoadConfig(suite.write(tt.content))
			suite.True(errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	raw, err := GenerateSchemaJSON()
	suite.Require().NoError(err)

	var schema struct {
		Properties map[string]struct {
			Properties map[string]map[string]interface{} `json:"properties"`
		} `json:"properties"`
	}
	suite.Require().NoError(json.Unmarshal([]byte(raw), &schema))

	suite.Contains(schema.Properties["binance"].Properties, "api_key")
	suite.Contains(schema.Properties["binance"].Properties, "stream_base_url")
	suite.Equal("string", schema.Properties["live"].Properties["history_timeout"]["type"])
	suite.Contains(schema.Properties["strategy"].Properties, "symbols")
}
