package writer

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
	start   time.Time
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.start = time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC)
}

func (suite *DuckDBWriterTestSuite) writePair(w *DuckDBWriter) {
	suite.Require().NoError(w.Initialize())

	for i := 0; i < 3; i++ {
		at := suite.start.Add(time.Duration(i) * time.Minute)
		suite.Require().NoError(w.Write("USO", types.PricePoint{Time: at, Price: 70 + float64(i)}))
		suite.Require().NoError(w.Write("GLD", types.PricePoint{Time: at, Price: 180 + float64(i)}))
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	w := NewDuckDBWriter(outputPath, nil)

	suite.Equal(outputPath, w.GetOutputPath())
	suite.Nil(w.db)
	suite.Nil(w.tx)
	suite.Nil(w.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	w := NewDuckDBWriter(filepath.Join(suite.tempDir, "test.parquet"), nil)

	err := w.Write("GLD", types.PricePoint{Time: suite.start, Price: 1})
	suite.Error(err)

	_, err = w.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestFinalizeParquet() {
	outputPath := filepath.Join(suite.tempDir, "pair.parquet")
	w := NewDuckDBWriter(outputPath, nil)
	defer w.Close()

	suite.writePair(w)

	path, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	var count int

	var maxClose float64

	err = db.QueryRow(`SELECT count(*), max(close) FROM read_parquet('` + outputPath + `') WHERE symbol = 'GLD'`).Scan(&count, &maxClose)
	suite.Require().NoError(err)
	suite.Equal(3, count)
	suite.Equal(182.0, maxClose)
}

func (suite *DuckDBWriterTestSuite) TestFinalizeCSV() {
	outputPath := filepath.Join(suite.tempDir, "pair.csv")
	w := NewDuckDBWriter(outputPath, nil)
	defer w.Close()

	suite.writePair(w)

	_, err := w.Finalize()
	suite.Require().NoError(err)

	content, err := os.ReadFile(outputPath)
	suite.Require().NoError(err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	suite.Len(lines, 7)
	suite.Equal("time,symbol,close", lines[0])
	suite.Contains(lines[1], "GLD")
}

func (suite *DuckDBWriterTestSuite) TestCloseIsSafeTwice() {
	w := NewDuckDBWriter(filepath.Join(suite.tempDir, "closed.parquet"), nil)
	suite.Require().NoError(w.Initialize())

	suite.NoError(w.Close())
	suite.NoError(w.Close())
}
