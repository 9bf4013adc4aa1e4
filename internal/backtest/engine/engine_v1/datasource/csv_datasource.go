package datasource

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

const (
	csvDateColumn     = "Date"
	csvCloseColumn    = "Close"
	csvAdjCloseColumn = "Adj Close"
)

var csvTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CSVDataSource reads one Yahoo Finance style CSV file per symbol from a
// directory. The file of symbol GLD is <dir>/GLD.csv. The adjusted close is
// preferred over the close when both columns exist.
type CSVDataSource struct {
	dir    string
	logger *logger.Logger
}

func NewCSVDataSource(dir string, log *logger.Logger) *CSVDataSource {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CSVDataSource{dir: dir, logger: log}
}

// FileName maps a symbol to its file name. Slashes of forex pairs are not
// valid in file names and are dropped.
func FileName(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "") + ".csv"
}

func (c *CSVDataSource) Load(ctx context.Context, symbols []string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.MultiSeries, error) {
	series := make([]types.PriceSeries, 0, len(symbols))

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return types.MultiSeries{}, err
		}

		s, err := c.readSymbol(symbol, start, end)
		if err != nil {
			return types.MultiSeries{}, err
		}

		series = append(series, s)
	}

	aligned := types.Align(series...)

	c.logger.Debug("Loaded CSV prices",
		zap.Strings("symbols", symbols),
		zap.Int("rows", aligned.Len()),
	)

	return aligned, nil
}

func (c *CSVDataSource) readSymbol(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	path := filepath.Join(c.dir, FileName(symbol))

	file, err := os.Open(path)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "no price file for %s", symbol)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read header of %s", path)
	}

	dateIndex, closeIndex, err := csvColumns(header)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "unexpected header in %s", path)
	}

	series := types.PriceSeries{Symbol: symbol}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s", path)
		}

		at, err := parseCSVTime(record[dateIndex])
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "bad date on line %d of %s", line, path)
		}

		// Yahoo writes "null" for days without a quote.
		price, err := strconv.ParseFloat(record[closeIndex], 64)
		if err != nil {
			c.logger.Debug("Skipping row without price", zap.String("file", path), zap.Int("line", line))

			continue
		}

		if !inRange(at, start, end) {
			continue
		}

		series.Points = append(series.Points, types.PricePoint{Time: at, Price: price})
	}

	series.Sort()

	return series, nil
}

func csvColumns(header []string) (int, int, error) {
	dateIndex, closeIndex, adjIndex := -1, -1, -1

	for i, column := range header {
		switch strings.TrimSpace(column) {
		case csvDateColumn:
			dateIndex = i
		case csvCloseColumn:
			closeIndex = i
		case csvAdjCloseColumn:
			adjIndex = i
		}
	}

	if adjIndex >= 0 {
		closeIndex = adjIndex
	}

	if dateIndex < 0 || closeIndex < 0 {
		return 0, 0, errors.Newf(errors.ErrCodeMissingParameter, "need %q and %q or %q columns, got %v", csvDateColumn, csvCloseColumn, csvAdjCloseColumn, header)
	}

	return dateIndex, closeIndex, nil
}

func parseCSVTime(value string) (time.Time, error) {
	var lastErr error

	for _, layout := range csvTimeLayouts {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return t, nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}

func (c *CSVDataSource) Close() error {
	return nil
}

var _ DataSource = (*CSVDataSource)(nil)
