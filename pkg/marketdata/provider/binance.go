package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

// BinanceKlinesPageSize is the number of klines requested per call.
const BinanceKlinesPageSize = 500

// KlinesService interface for listing klines.
type KlinesService interface {
	Symbol(symbol string) KlinesService
	Interval(interval string) KlinesService
	StartTime(startTime int64) KlinesService
	EndTime(endTime int64) KlinesService
	Limit(limit int) KlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// KlinesClient abstracts the Binance client for testing.
type KlinesClient interface {
	NewKlinesService() KlinesService
}

type realKlinesClient struct {
	client *binance.Client
}

func (r *realKlinesClient) NewKlinesService() KlinesService {
	return &realKlinesService{service: r.client.NewKlinesService()}
}

type realKlinesService struct {
	service *binance.KlinesService
}

func (s *realKlinesService) Symbol(symbol string) KlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realKlinesService) Interval(interval string) KlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *realKlinesService) StartTime(startTime int64) KlinesService {
	s.service = s.service.StartTime(startTime)

	return s
}

func (s *realKlinesService) EndTime(endTime int64) KlinesService {
	s.service = s.service.EndTime(endTime)

	return s
}

func (s *realKlinesService) Limit(limit int) KlinesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// NewKlinesClient wraps a go-binance client.
func NewKlinesClient(client *binance.Client) KlinesClient {
	return &realKlinesClient{client: client}
}

type BinanceClient struct {
	client     KlinesClient
	interval   string
	onProgress OnDownloadProgress
}

// NewBinanceClient creates a client for the public klines endpoint.
func NewBinanceClient(bar Bar, onProgress OnDownloadProgress) (*BinanceClient, error) {
	return NewBinanceClientWithKlines(NewKlinesClient(binance.NewClient("", "")), bar, onProgress)
}

// NewBinanceClientWithKlines creates a client on top of an existing klines client.
func NewBinanceClientWithKlines(client KlinesClient, bar Bar, onProgress OnDownloadProgress) (*BinanceClient, error) {
	interval, err := convertTimespanToBinanceInterval(bar.Timespan, bar.Multiplier)
	if err != nil {
		return nil, err
	}

	return &BinanceClient{
		client:     client,
		interval:   interval,
		onProgress: onProgress,
	}, nil
}

// History implements HistoryProvider. Klines are keyed by their open time.
func (c *BinanceClient) History(ctx context.Context, symbol string, start time.Time, end time.Time) (types.PriceSeries, error) {
	series := types.PriceSeries{Symbol: symbol, Points: nil}

	startMillis := start.UnixMilli()
	endMillis := end.UnixMilli()
	current := startMillis

	for {
		klines, err := c.client.NewKlinesService().
			Symbol(symbol).
			Interval(c.interval).
			StartTime(current).
			EndTime(endMillis).
			Limit(BinanceKlinesPageSize).
			Do(ctx)
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s", symbol)
		}

		points, err := convertKlines(klines)
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse klines for %s", symbol)
		}

		series.Points = append(series.Points, points...)

		reportProgress(c.onProgress, float64(current-startMillis), float64(endMillis-startMillis), fmt.Sprintf("Downloading %s klines from Binance", symbol))

		if len(klines) < BinanceKlinesPageSize {
			break
		}

		// continue after the close of the last kline
		current = klines[len(klines)-1].CloseTime + 1
		if current >= endMillis {
			break
		}
	}

	if series.Len() == 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeDataNotFound, "binance returned no klines for %s", symbol)
	}

	series.Sort()

	return series, nil
}

func convertKlines(klines []*binance.Kline) ([]types.PricePoint, error) {
	points := make([]types.PricePoint, 0, len(klines))

	for _, k := range klines {
		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid close %q at %d: %w", k.Close, k.OpenTime, err)
		}

		points = append(points, types.PricePoint{Time: time.UnixMilli(k.OpenTime).UTC(), Price: closePrice})
	}

	return points, nil
}

// convertTimespanToBinanceInterval converts the polygon timespan and multiplier to a Binance interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
func convertTimespanToBinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	switch timespan {
	case models.Second:
		if multiplier == 1 {
			return "1s", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported second multiplier for Binance: %d", multiplier)
	case models.Minute:
		return fmt.Sprintf("%dm", multiplier), nil
	case models.Hour:
		return fmt.Sprintf("%dh", multiplier), nil
	case models.Day:
		return fmt.Sprintf("%dd", multiplier), nil
	case models.Week:
		if multiplier == 1 {
			return "1w", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported weekly multiplier for Binance: %d", multiplier)
	case models.Month:
		if multiplier == 1 {
			return "1M", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported monthly multiplier for Binance: %d", multiplier)
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported timespan for Binance: %s", timespan)
	}
}
