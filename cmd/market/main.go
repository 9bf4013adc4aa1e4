package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/logger"
	"github.com/rxtech-lab/argo-pairs/pkg/marketdata"
	"github.com/rxtech-lab/argo-pairs/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// progressSteps is the resolution of the download progress bar.
const progressSteps = 1000

// newProgress returns a progress callback drawing a single bar. Providers
// report progress in their own units, so the bar shows the ratio.
func newProgress() (provider.OnDownloadProgress, func()) {
	bar := progressbar.Default(progressSteps, "Downloading")

	onProgress := func(current float64, total float64, message string) {
		if total <= 0 {
			return
		}

		bar.Describe(message)
		_ = bar.Set(int(current / total * progressSteps))
	}

	return onProgress, func() { _ = bar.Finish() }
}

// downloadAction downloads every ticker into one file under the data folder.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	tickers := strings.Split(cmd.String("tickers"), ",")
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	providerFlag := cmd.String("provider")

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	onProgress, finish := newProgress()

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(providerFlag),
		DataPath:      cmd.String("data"),
		PolygonApiKey: os.Getenv("POLYGON_API_KEY"),
		Format:        marketdata.Format(cmd.String("format")),
	}, onProgress, log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Tickers:   tickers,
		StartDate: startDate,
		EndDate:   endDate,
		Timespan:  marketdata.Timespan(cmd.String("timespan")),
	})
	finish()

	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Printf("\nDownloaded %s from %s to %s into %s\n",
		strings.Join(tickers, ", "), startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), path)

	return nil
}

func providersAction(_ context.Context, _ *cli.Command) error {
	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		auth := ""
		if info.RequiresAuth {
			auth = " (requires POLYGON_API_KEY)"
		}

		fmt.Printf("%-10s %s: %s%s\n", info.Name, info.DisplayName, info.Description, auth)
	}

	return nil
}

func main() {
	timespans := make([]string, 0, len(marketdata.AllTimespans))
	for _, timespan := range marketdata.AllTimespans {
		timespans = append(timespans, string(timespan))
	}

	cmd := &cli.Command{
		Name:  "market",
		Usage: "Download historical market data",
		Commands: []*cli.Command{
			{
				Name:  "download",
				Usage: "Download closes of one or more tickers into a single file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tickers",
						Aliases:  []string{"t"},
						Usage:    "Comma separated ticker symbols, e.g. GLD,USO",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "Start date in `YYYY-MM-DD` format",
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02"},
						},
						Required: true,
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
						Value:   time.Now(),
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02"},
						},
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   fmt.Sprintf("Data provider to use (%s)", strings.Join(marketdata.GetSupportedProviders(), ", ")),
						Value:   string(provider.ProviderPolygon),
					},
					&cli.StringFlag{
						Name:    "timespan",
						Usage:   fmt.Sprintf("Bar size (%s)", strings.Join(timespans, ", ")),
						Value:   string(marketdata.TimespanOneDay),
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   fmt.Sprintf("Output format (%s or %s)", marketdata.FormatParquet, marketdata.FormatCSV),
						Value:   string(marketdata.FormatParquet),
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to the data output directory",
						Value:   "data",
					},
				},
				Action: downloadAction,
			},
			{
				Name:   "providers",
				Usage:  "List the supported data providers",
				Action: providersAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
