package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

// AggsIterator is the part of the polygon iterator the client reads.
type AggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// AggsClient abstracts the polygon aggregates endpoint for testing.
type AggsClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams) AggsIterator
}

type restAggsClient struct {
	client *polygon.Client
}

func (c *restAggsClient) ListAggs(ctx context.Context, params *models.ListAggsParams) AggsIterator {
	return c.client.ListAggs(ctx, params)
}

type PolygonClient struct {
	client     AggsClient
	bar        Bar
	onProgress OnDownloadProgress
}

func NewPolygonClient(apiKey string, bar Bar, onProgress OnDownloadProgress) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon provider requires an api key")
	}

	return NewPolygonClientWithAggs(&restAggsClient{client: polygon.New(apiKey)}, bar, onProgress), nil
}

// NewPolygonClientWithAggs creates a client on top of an existing aggregates client.
func NewPolygonClientWithAggs(client AggsClient, bar Bar, onProgress OnDownloadProgress) *PolygonClient {
	return &PolygonClient{
		client:     client,
		bar:        bar,
		onProgress: onProgress,
	}
}

// History implements HistoryProvider.
func (c *PolygonClient) History(ctx context.Context, symbol string, start time.Time, end time.Time) (types.PriceSeries, error) {
	series := types.PriceSeries{Symbol: symbol, Points: nil}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: c.bar.Multiplier,
		Timespan:   c.bar.Timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := c.client.ListAggs(ctx, params)
	total := end.Sub(start).Hours()

	for iter.Next() {
		agg := iter.Item()
		at := time.Time(agg.Timestamp).UTC()

		series.Points = append(series.Points, types.PricePoint{Time: at, Price: agg.Close})

		if len(series.Points)%1000 == 0 {
			reportProgress(c.onProgress, at.Sub(start).Hours(), total, fmt.Sprintf("Downloading %s", symbol))
		}
	}

	if err := iter.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to list polygon aggregates for %s", symbol)
	}

	if series.Len() == 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeDataNotFound, "polygon returned no aggregates for %s", symbol)
	}

	series.Sort()
	reportProgress(c.onProgress, total, total, fmt.Sprintf("Downloaded %s", symbol))

	return series, nil
}
