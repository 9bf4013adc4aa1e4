// Package marketdata downloads historical closes from a market data provider
// into a file the backtest DuckDB datasource can read.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/rxtech-lab/argo-pairs/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-pairs/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// Format is the output file format.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance"`
	DataPath      string                `validate:"required"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
	Format        Format                `validate:"omitempty,oneof=parquet csv"`
}

// DownloadParams holds the parameters for a market data download request.
// All tickers are written into one file.
type DownloadParams struct {
	Tickers   []string  `validate:"required,min=1,dive,required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
	Timespan  Timespan  `validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d 1w"`
}

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	config      ClientConfig
	validate    *validator.Validate
	onProgress  provider.OnDownloadProgress
	newProvider func(config provider.Config) (provider.HistoryProvider, error)
	log         *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	if config.Format == "" {
		config.Format = FormatParquet
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		config:      config,
		validate:    validate,
		onProgress:  onProgress,
		newProvider: provider.NewHistoryProvider,
		log:         log,
	}, nil
}

// Download fetches every ticker and writes them into one file. It returns the file path.
func (c *Client) Download(ctx context.Context, params DownloadParams) (path string, err error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	historyProvider, err := c.newProvider(provider.Config{
		Type:       c.config.ProviderType,
		APIKey:     c.config.PolygonApiKey,
		Bar:        params.Timespan.Bar(),
		OnProgress: c.onProgress,
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create data path: %w", err)
	}

	marketWriter := writer.NewDuckDBWriter(filepath.Join(c.config.DataPath, c.outputFileName(params)), c.log)
	if err := marketWriter.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	defer func() {
		if cerr := marketWriter.Close(); cerr != nil {
			c.log.Warn("Failed to close writer", zap.Error(cerr))
		}
	}()

	for _, ticker := range params.Tickers {
		series, err := historyProvider.History(ctx, ticker, params.StartDate, params.EndDate)
		if err != nil {
			return "", err
		}

		for _, point := range series.Points {
			if err := marketWriter.Write(ticker, point); err != nil {
				return "", fmt.Errorf("failed to write data: %w", err)
			}
		}

		c.log.Info("Downloaded history",
			zap.String("ticker", ticker),
			zap.Int("points", series.Len()),
		)
	}

	return marketWriter.Finalize()
}

// outputFileName is TICKERS_START_END_TIMESPAN.<format>.
func (c *Client) outputFileName(params DownloadParams) string {
	tickers := make([]string, len(params.Tickers))
	for i, ticker := range params.Tickers {
		tickers[i] = strings.ReplaceAll(ticker, "/", "")
	}

	return fmt.Sprintf("%s_%s_%s_%s.%s",
		strings.Join(tickers, "-"),
		params.StartDate.Format("2006-01-02"),
		params.EndDate.Format("2006-01-02"),
		params.Timespan,
		c.config.Format)
}
