package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine"
	backtest "github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-pairs/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/strategy/builder"
	"github.com/rxtech-lab/argo-pairs/internal/version"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	sourceCSV    = "csv"
	sourceDuckDB = "duckdb"
)

// openDataSource opens the datasource named by source. For csv, data is the
// directory of per symbol files. For duckdb, data is a parquet or csv file
// written by the market command.
func openDataSource(source, data string, log *logger.Logger) (datasource.DataSource, error) {
	switch source {
	case sourceCSV:
		return datasource.NewCSVDataSource(data, log), nil
	case sourceDuckDB:
		duckdb, err := datasource.NewDuckDBDataSource(data, log)
		if err != nil {
			return nil, err
		}

		return duckdb, nil
	default:
		return nil, fmt.Errorf("unknown data source %q, expected %s or %s", source, sourceCSV, sourceDuckDB)
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	config, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	backtester := backtest.NewBacktestEngineV1(log)

	if err := backtester.Initialize(string(config)); err != nil {
		return fmt.Errorf("failed to initialize backtest engine: %w", err)
	}

	source, err := openDataSource(cmd.String("source"), cmd.String("data"), log)
	if err != nil {
		return err
	}

	defer func() { _ = source.Close() }()

	if err := backtester.SetDataSource(source); err != nil {
		return fmt.Errorf("failed to set data source: %w", err)
	}

	results := cmd.String("results")
	if results != "" {
		results = filepath.Join(results, time.Now().Format("20060102-150405"))
		if err := backtester.SetResultsFolder(results); err != nil {
			return fmt.Errorf("failed to set results folder: %w", err)
		}
	}

	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(runID string, symbols []string, total int) error {
		log.Info("Backtest started",
			zap.String("run_id", runID),
			zap.Strings("symbols", symbols),
			zap.Int("rows", total),
		)

		bar = progressbar.Default(int64(total), "Replaying")

		return nil
	})
	onProcess := engine.OnProcessDataCallback(func(current int, _ int) error {
		if bar != nil {
			return bar.Set(current)
		}

		return nil
	})
	onTick := engine.OnTickCallback(func(at time.Time, action strategy.TickAction) error {
		if action != strategy.TickActionNone {
			log.Debug("Strategy acted", zap.Time("at", at), zap.String("action", string(action)))
		}

		return nil
	})

	report, err := backtester.Run(ctx, engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnProcessData:   &onProcess,
		OnTick:          &onTick,
	})
	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	fmt.Println()
	fmt.Println(backtest.Summary(report))

	if results != "" {
		log.Info("Results written", zap.String("folder", results))
	}

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	if cmd.Bool("strategy") {
		schema, err = builder.GenerateSchemaJSON()
	} else {
		schema, err = backtest.NewBacktestEngineV1(nil).GetConfigSchema()
	}

	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Replay a pairs trading strategy over historical closes",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a backtest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the backtest config YAML file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "CSV directory or DuckDB readable file holding the closes",
						Value:   "data",
					},
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   fmt.Sprintf("Data source type (%s or %s)", sourceCSV, sourceDuckDB),
						Value:   sourceCSV,
					},
					&cli.StringFlag{
						Name:    "results",
						Aliases: []string{"r"},
						Usage:   "Folder the report and closed orders are written to. Empty writes nothing.",
						Value:   "results",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the backtest config",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "strategy",
						Usage: "Print the schema of the strategy section only",
					},
				},
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
