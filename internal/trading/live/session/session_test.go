package session

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/trading/live"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SessionTestSuite struct {
	suite.Suite
	tempDir string
	now     time.Time
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func (suite *SessionTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.now = time.Date(2024, 3, 5, 14, 30, 59, 0, time.UTC)
}

func (suite *SessionTestSuite) TestOpenFirstRun() {
	s := NewSession(suite.tempDir, nil)
	suite.Empty(s.Path())

	suite.Require().NoError(s.Open(suite.now))

	suite.Equal("run_1", s.RunID())
	suite.Equal(filepath.Join(suite.tempDir, "2024-03-05", "run_1"), s.Path())
	suite.DirExists(s.Path())
}

func (suite *SessionTestSuite) TestOpenCountsExistingRuns() {
	date := filepath.Join(suite.tempDir, "2024-03-05")
	for _, name := range []string{"run_1", "run_3", "run_x", "notes"} {
		suite.Require().NoError(os.MkdirAll(filepath.Join(date, name), 0o755))
	}
	suite.Require().NoError(os.WriteFile(filepath.Join(date, "run_9"), []byte("file"), 0o644))

	s := NewSession(suite.tempDir, nil)
	suite.Require().NoError(s.Open(suite.now))
	suite.Equal("run_4", s.RunID())

	other := NewSession(suite.tempDir, nil)
	suite.Require().NoError(other.Open(suite.now.Add(24 * time.Hour)))
	suite.Equal("run_1", other.RunID())
}

func (suite *SessionTestSuite) TestSaveBeforeOpen() {
	err := NewSession(suite.tempDir, nil).Save(live.Snapshot{})
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedOperation))
}

func (suite *SessionTestSuite) TestSave() {
	s := NewSession(suite.tempDir, nil)
	suite.Require().NoError(s.Open(suite.now))

	open := suite.now.Add(-time.Hour)
	snapshot := live.Snapshot{
		Time:    suite.now,
		Symbols: []string{"BTCUSDT", "ETHUSDT"},
		ClosedOrders: []types.ClosedOrder{
			types.NewClosedOrder(types.Order{ID: 1, Symbol: "BTCUSDT", Amount: 2, OpenPrice: 100, OpenTime: open, Status: types.OrderStatusFilled}, 105, suite.now, 10),
			types.NewClosedOrder(types.Order{ID: 2, Symbol: "ETHUSDT", Amount: -3, OpenPrice: 50, OpenTime: open, Status: types.OrderStatusFilled}, 52, suite.now, -6),
		},
		PnL: 4,
	}

	suite.Require().NoError(s.Save(snapshot))

	data, err := os.ReadFile(filepath.Join(s.Path(), SnapshotFileName))
	suite.Require().NoError(err)

	var saved live.Snapshot
	suite.Require().NoError(json.Unmarshal(data, &saved))
	suite.Equal(snapshot.Symbols, saved.Symbols)
	suite.Len(saved.ClosedOrders, 2)
	suite.Equal(4.0, saved.PnL)

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	var (
		count int
		pnl   float64
	)

	parquet := filepath.Join(s.Path(), ClosedOrdersFileName)
	err = db.QueryRow("SELECT COUNT(*), SUM(pnl) FROM read_parquet('" + parquet + "')").Scan(&count, &pnl)
	suite.Require().NoError(err)
	suite.Equal(2, count)
	suite.InDelta(4.0, pnl, 1e-9)
}

func (suite *SessionTestSuite) TestSaveWithoutClosedOrders() {
	s := NewSession(suite.tempDir, nil)
	suite.Require().NoError(s.Open(suite.now))

	suite.Require().NoError(s.Save(live.Snapshot{Time: suite.now}))
	suite.FileExists(filepath.Join(s.Path(), SnapshotFileName))
	suite.FileExists(filepath.Join(s.Path(), ClosedOrdersFileName))
}
