package writer

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"go.uber.org/zap"
)

// DuckDBWriter implements the Writer interface for DuckDB. Rows are buffered
// in an in-memory table and exported as parquet, or as CSV when the output
// path ends in .csv.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	rows       int
	log        *logger.Logger
}

// NewDuckDBWriter creates a new DuckDBWriter.
func NewDuckDBWriter(outputPath string, log *logger.Logger) *DuckDBWriter {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &DuckDBWriter{
		outputPath: outputPath,
		log:        log,
	}
}

// Initialize creates the market_data table, begins a transaction and
// prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			time TIMESTAMP,
			symbol TEXT,
			close DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`INSERT INTO market_data (time, symbol, close) VALUES (?, ?, ?)`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	w.rows = 0

	return nil
}

// Write inserts one close within the open transaction.
func (w *DuckDBWriter) Write(symbol string, point types.PricePoint) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	if _, err := w.stmt.Exec(point.Time.UTC(), symbol, point.Price); err != nil {
		return fmt.Errorf("failed to insert data: %w", err)
	}

	w.rows++

	return nil
}

// Finalize commits the transaction and exports the table ordered by time.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	format := "FORMAT PARQUET"
	if strings.EqualFold(filepath.Ext(w.outputPath), ".csv") {
		format = "FORMAT CSV, HEADER"
	}

	query := fmt.Sprintf(`COPY (SELECT time, symbol, close FROM market_data ORDER BY time, symbol) TO '%s' (%s)`,
		strings.ReplaceAll(w.outputPath, "'", "''"), format)

	if _, err = w.db.Exec(query); err != nil {
		return "", fmt.Errorf("failed to export market data: %w", err)
	}

	w.log.Info("Exported market data",
		zap.String("path", w.outputPath),
		zap.Int("rows", w.rows),
	)

	return w.outputPath, nil
}

// Close releases the statement and the connection and rolls back an
// unfinished transaction.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.log.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		errMsg := "errors occurred during close:"
		for _, e := range closeErrors {
			errMsg += fmt.Sprintf("\n- %v", e)
		}

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// GetOutputPath implements MarketDataWriter.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

var _ MarketDataWriter = (*DuckDBWriter)(nil)
