package provider

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/polygon-io/client-go/rest/models"
	argoErrors "github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockKlinesClient returns one page per call.
type mockKlinesClient struct {
	pages    [][]*binance.Kline
	err      error
	requests []*mockKlinesService
}

func (m *mockKlinesClient) NewKlinesService() KlinesService {
	service := &mockKlinesService{client: m}
	m.requests = append(m.requests, service)

	return service
}

type mockKlinesService struct {
	client    *mockKlinesClient
	symbol    string
	interval  string
	startTime int64
	endTime   int64
	limit     int
}

func (m *mockKlinesService) Symbol(symbol string) KlinesService {
	m.symbol = symbol
	return m
}

func (m *mockKlinesService) Interval(interval string) KlinesService {
	m.interval = interval
	return m
}

func (m *mockKlinesService) StartTime(startTime int64) KlinesService {
	m.startTime = startTime
	return m
}

func (m *mockKlinesService) EndTime(endTime int64) KlinesService {
	m.endTime = endTime
	return m
}

func (m *mockKlinesService) Limit(limit int) KlinesService {
	m.limit = limit
	return m
}

func (m *mockKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	if m.client.err != nil {
		return nil, m.client.err
	}

	page := len(m.client.requests) - 1
	if page >= len(m.client.pages) {
		return nil, nil
	}

	return m.client.pages[page], nil
}

func klines(start time.Time, count int, firstClose float64) []*binance.Kline {
	result := make([]*binance.Kline, count)

	for i := 0; i < count; i++ {
		openTime := start.Add(time.Duration(i) * time.Minute)
		result[i] = &binance.Kline{
			OpenTime:  openTime.UnixMilli(),
			Close:     strconv.FormatFloat(firstClose+float64(i), 'f', 2, 64),
			CloseTime: openTime.Add(time.Minute).UnixMilli() - 1,
		}
	}

	return result
}

type BinanceClientTestSuite struct {
	suite.Suite
	start time.Time
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *BinanceClientTestSuite) TestHistoryPaginates() {
	first := klines(suite.start, BinanceKlinesPageSize, 100)
	second := klines(suite.start.Add(BinanceKlinesPageSize*time.Minute), 2, 600)
	mock := &mockKlinesClient{pages: [][]*binance.Kline{first, second}}

	var progress []float64

	client, err := NewBinanceClientWithKlines(mock, MinuteBar, func(current, _ float64, _ string) {
		progress = append(progress, current)
	})
	suite.Require().NoError(err)

	series, err := client.History(context.Background(), "BTCUSDT", suite.start, suite.start.Add(24*time.Hour))
	suite.Require().NoError(err)

	suite.Equal("BTCUSDT", series.Symbol)
	suite.Equal(BinanceKlinesPageSize+2, series.Len())
	suite.Equal(suite.start, series.Points[0].Time)
	suite.Equal(100.0, series.Points[0].Price)
	suite.Equal(601.0, series.Points[len(series.Points)-1].Price)

	suite.Len(mock.requests, 2)
	suite.Equal("1m", mock.requests[0].interval)
	suite.Equal(BinanceKlinesPageSize, mock.requests[0].limit)
	suite.Equal(suite.start.UnixMilli(), mock.requests[0].startTime)
	suite.Equal(first[len(first)-1].CloseTime+1, mock.requests[1].startTime)
	suite.Len(progress, 2)
}

func (suite *BinanceClientTestSuite) TestHistoryErrors() {
	client, err := NewBinanceClientWithKlines(&mockKlinesClient{err: errors.New("teapot")}, MinuteBar, nil)
	suite.Require().NoError(err)

	_, err = client.History(context.Background(), "BTCUSDT", suite.start, suite.start.Add(time.Hour))
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))

	client, err = NewBinanceClientWithKlines(&mockKlinesClient{}, MinuteBar, nil)
	suite.Require().NoError(err)

	_, err = client.History(context.Background(), "BTCUSDT", suite.start, suite.start.Add(time.Hour))
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeDataNotFound))

	bad := klines(suite.start, 1, 1)
	bad[0].Close = "n/a"

	client, err = NewBinanceClientWithKlines(&mockKlinesClient{pages: [][]*binance.Kline{bad}}, MinuteBar, nil)
	suite.Require().NoError(err)

	_, err = client.History(context.Background(), "BTCUSDT", suite.start, suite.start.Add(time.Hour))
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataParseFailed))
}

func (suite *BinanceClientTestSuite) TestConvertTimespanToBinanceInterval() {
	tests := []struct {
		timespan   models.Timespan
		multiplier int
		expected   string
		fails      bool
	}{
		{models.Second, 1, "1s", false},
		{models.Minute, 15, "15m", false},
		{models.Hour, 4, "4h", false},
		{models.Day, 1, "1d", false},
		{models.Week, 1, "1w", false},
		{models.Week, 2, "", true},
		{models.Month, 1, "1M", false},
		{models.Quarter, 1, "", true},
	}

	for _, tc := range tests {
		suite.Run(string(tc.timespan)+strconv.Itoa(tc.multiplier), func() {
			interval, err := convertTimespanToBinanceInterval(tc.timespan, tc.multiplier)
			if tc.fails {
				suite.Error(err)

				return
			}

			suite.NoError(err)
			suite.Equal(tc.expected, interval)
		})
	}
}

func (suite *BinanceClientTestSuite) TestNewHistoryProvider() {
	binanceProvider, err := NewHistoryProvider(Config{Type: ProviderBinance})
	suite.NoError(err)
	suite.IsType(&BinanceClient{}, binanceProvider)

	_, err = NewHistoryProvider(Config{Type: ProviderPolygon})
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMissingParameter))

	polygonProvider, err := NewHistoryProvider(Config{Type: ProviderPolygon, APIKey: "key"})
	suite.NoError(err)
	suite.IsType(&PolygonClient{}, polygonProvider)

	_, err = NewHistoryProvider(Config{Type: "yahoo"})
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidProvider))
}
