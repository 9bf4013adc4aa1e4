package provider

import (
	"context"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// OnDownloadProgress reports how far a download has come. current and total
// share a unit chosen by the provider.
type OnDownloadProgress = func(current float64, total float64, message string)

// HistoryProvider downloads close prices of one symbol.
type HistoryProvider interface {
	// History returns the closes of symbol between start and end, ordered by time.
	// example:
	// History(ctx, "GLD", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	History(ctx context.Context, symbol string, start time.Time, end time.Time) (types.PriceSeries, error)
}

// Bar configures the bar size a provider requests.
type Bar struct {
	Multiplier int
	Timespan   models.Timespan
}

// MinuteBar is the bar size the live strategies trade on.
var MinuteBar = Bar{Multiplier: 1, Timespan: models.Minute}

// Config selects and configures a HistoryProvider.
type Config struct {
	Type ProviderType
	// APIKey is required by Polygon.
	APIKey string
	Bar    Bar
	// OnProgress is optional.
	OnProgress OnDownloadProgress
}

// NewHistoryProvider creates a new history provider based on the provider type.
func NewHistoryProvider(config Config) (HistoryProvider, error) {
	bar := config.Bar
	if bar.Multiplier == 0 {
		bar = MinuteBar
	}

	switch config.Type {
	case ProviderBinance:
		client, err := NewBinanceClient(bar, config.OnProgress)
		if err != nil {
			return nil, err
		}

		return client, nil
	case ProviderPolygon:
		client, err := NewPolygonClient(config.APIKey, bar, config.OnProgress)
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", config.Type)
	}
}

func reportProgress(onProgress OnDownloadProgress, current, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}
