package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBDataSource reads a parquet or CSV file with time, symbol and close
// columns through an in-memory DuckDB database.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBDataSource opens an in-memory DuckDB and exposes the file at path
// as the market_data view.
func NewDuckDBDataSource(path string, log *logger.Logger) (*DuckDBDataSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	d := &DuckDBDataSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := d.initialize(path); err != nil {
		db.Close()

		return nil, err
	}

	return d, nil
}

func (d *DuckDBDataSource) initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	// Squirrel does not build CREATE VIEW statements.
	query := fmt.Sprintf(`
		CREATE OR REPLACE VIEW market_data AS
		SELECT CAST(time AS TIMESTAMP) AS time, CAST(symbol AS VARCHAR) AS symbol, CAST(close AS DOUBLE) AS close
		FROM %s('%s');
	`, reader, strings.ReplaceAll(path, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load %s", path)
	}

	return nil
}

// Load implements DataSource.
func (d *DuckDBDataSource) Load(ctx context.Context, symbols []string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.MultiSeries, error) {
	conditions := squirrel.And{squirrel.Eq{"symbol": symbols}}

	if start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := d.sq.
		Select("time", "symbol", "close").
		From("market_data").
		Where(conditions).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return types.MultiSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.MultiSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	bySymbol := make(map[string]*types.PriceSeries, len(symbols))
	for _, symbol := range symbols {
		bySymbol[symbol] = &types.PriceSeries{Symbol: symbol}
	}

	for rows.Next() {
		var (
			timestamp time.Time
			symbol    string
			price     float64
		)

		if err := rows.Scan(&timestamp, &symbol, &price); err != nil {
			return types.MultiSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		series := bySymbol[symbol]
		series.Points = append(series.Points, types.PricePoint{Time: timestamp.UTC(), Price: price})
	}

	if err := rows.Err(); err != nil {
		return types.MultiSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	series := make([]types.PriceSeries, 0, len(symbols))

	for _, symbol := range symbols {
		if bySymbol[symbol].Len() == 0 {
			return types.MultiSeries{}, errors.Newf(errors.ErrCodeDataNotFound, "no prices for %s", symbol)
		}

		series = append(series, *bySymbol[symbol])
	}

	aligned := types.Align(series...)

	d.logger.Debug("Loaded DuckDB prices",
		zap.Strings("symbols", symbols),
		zap.Int("rows", aligned.Len()),
	)

	return aligned, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

var _ DataSource = (*DuckDBDataSource)(nil)
