package tradingprovider

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

const (
	DefaultOrderPollInterval   = time.Second
	DefaultAccountPollInterval = 30 * time.Second
)

// DefaultQuoteAssets are the balances counted as account value.
var DefaultQuoteAssets = []string{"USDT", "BUSD", "USD"}

// BinanceProviderConfig contains configuration for Binance trading.
type BinanceProviderConfig struct {
	ApiKey    string `yaml:"api_key" mapstructure:"api_key" json:"apiKey" jsonschema:"title=API Key,description=Binance API key" validate:"required"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key" json:"secretKey" jsonschema:"title=Secret Key,description=Binance API secret key" validate:"required"`
	// BaseURL overrides the REST endpoint and takes precedence over Testnet.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" json:"baseUrl,omitempty" validate:"omitempty,url"`
	// StreamBaseURL overrides the websocket endpoint of the selected network.
	StreamBaseURL       string        `yaml:"stream_base_url" mapstructure:"stream_base_url" json:"streamBaseUrl,omitempty" validate:"omitempty,url"`
	Testnet             bool          `yaml:"testnet" mapstructure:"testnet" json:"testnet"`
	OrderPollInterval   time.Duration `yaml:"order_poll_interval" mapstructure:"order_poll_interval" json:"orderPollInterval" validate:"gte=0"`
	AccountPollInterval time.Duration `yaml:"account_poll_interval" mapstructure:"account_poll_interval" json:"accountPollInterval" validate:"gte=0"`
	QuoteAssets         []string      `yaml:"quote_assets" mapstructure:"quote_assets" json:"quoteAssets,omitempty" validate:"dive,required"`
}

// Validate validates the BinanceProviderConfig struct.
func (c *BinanceProviderConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance provider config", err)
	}

	return nil
}

// withDefaults fills unset intervals and quote assets.
func (c BinanceProviderConfig) withDefaults() BinanceProviderConfig {
	if c.OrderPollInterval == 0 {
		c.OrderPollInterval = DefaultOrderPollInterval
	}

	if c.AccountPollInterval == 0 {
		c.AccountPollInterval = DefaultAccountPollInterval
	}

	if len(c.QuoteAssets) == 0 {
		c.QuoteAssets = DefaultQuoteAssets
	}

	return c
}
