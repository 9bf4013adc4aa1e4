// Package session stores the results of a live trading process on disk.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/trading/live"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"go.uber.org/zap"
)

const (
	SnapshotFileName     = "snapshot.json"
	ClosedOrdersFileName = "closed_orders.parquet"

	dateLayout = "2006-01-02"
)

var runPattern = regexp.MustCompile(`^run_(\d+)$`)

// Session owns one run folder of a live process:
//
//	{root}/{YYYY-MM-DD}/run_N/
//
// N counts the runs started on the same day.
type Session struct {
	root   string
	runID  string
	path   string
	mu     sync.Mutex
	logger *logger.Logger
}

func NewSession(root string, log *logger.Logger) *Session {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Session{root: root, logger: log.Named("session")}
}

// Open creates the next run folder of the day of now.
func (s *Session) Open(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := now.Format(dateLayout)

	runNumber, err := nextRunNumber(filepath.Join(s.root, date))
	if err != nil {
		return err
	}

	s.runID = fmt.Sprintf("run_%d", runNumber)
	s.path = filepath.Join(s.root, date, s.runID)

	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to create run folder %s", s.path)
	}

	s.logger.Info("Session opened", zap.String("run_id", s.runID), zap.String("path", s.path))

	return nil
}

// RunID returns the run folder name, e.g. run_1. Empty until Open.
func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runID
}

// Path returns the run folder. Empty until Open.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.path
}

// Save writes the snapshot as JSON and its closed orders as parquet into the
// run folder. Saving again overwrites both files.
func (s *Session) Save(snapshot live.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New(errors.ErrCodeUnsupportedOperation, "session is not open")
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.path, SnapshotFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := writeClosedOrders(filepath.Join(s.path, ClosedOrdersFileName), snapshot); err != nil {
		return err
	}

	s.logger.Info("Session saved",
		zap.String("path", s.path),
		zap.Int("closed_orders", len(snapshot.ClosedOrders)),
		zap.Float64("pnl", snapshot.PnL),
	)

	return nil
}

// nextRunNumber scans a date folder for run_N folders and returns the
// largest N plus one.
func nextRunNumber(datePath string) (int, error) {
	entries, err := os.ReadDir(datePath)
	if os.IsNotExist(err) {
		return 1, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", datePath, err)
	}

	maxRunNumber := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		matches := runPattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}

		if num, err := strconv.Atoi(matches[1]); err == nil && num > maxRunNumber {
			maxRunNumber = num
		}
	}

	return maxRunNumber + 1, nil
}

// writeClosedOrders loads the closed orders into an in-memory DuckDB table
// and exports it to path.
func writeClosedOrders(path string, snapshot live.Snapshot) error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB: %w", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE closed_orders (
			id INTEGER,
			symbol TEXT,
			amount INTEGER,
			open_price DOUBLE,
			open_time TIMESTAMP,
			close_price DOUBLE,
			close_time TIMESTAMP,
			pnl DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create closed orders table: %w", err)
	}

	if len(snapshot.ClosedOrders) > 0 {
		insert := squirrel.Insert("closed_orders").
			Columns("id", "symbol", "amount", "open_price", "open_time", "close_price", "close_time", "pnl").
			PlaceholderFormat(squirrel.Dollar)

		for _, order := range snapshot.ClosedOrders {
			insert = insert.Values(order.ID, order.Symbol, order.Amount, order.OpenPrice, order.OpenTime,
				order.ClosePrice, order.CloseTime, order.PnL)
		}

		if _, err := insert.RunWith(db).Exec(); err != nil {
			return fmt.Errorf("failed to insert closed orders: %w", err)
		}
	}

	escaped := strings.ReplaceAll(path, "'", "''")

	_, err = db.Exec(fmt.Sprintf(`COPY (SELECT * FROM closed_orders ORDER BY close_time, id) TO '%s' (FORMAT PARQUET)`, escaped))
	if err != nil {
		return fmt.Errorf("failed to export closed orders: %w", err)
	}

	return nil
}
