package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-pairs/internal/app"
	"github.com/rxtech-lab/argo-pairs/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

func runAction(_ context.Context, cmd *cli.Command) error {
	config, err := app.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	// Run blocks until SIGINT or SIGTERM, or until the runner fails.
	fx.New(app.Module(config)).Run()

	return nil
}

func checkAction(_ context.Context, cmd *cli.Command) error {
	config, err := app.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	fmt.Printf("%s strategy on %v, leverage %d, sessions under %s\n",
		config.Strategy.Type, config.Strategy.Symbols, config.Live.Leverage, config.DataPath)

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := app.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the live config YAML file. ARGO_ prefixed variables override it.",
		Value:   "config/live.yaml",
	}

	cmd := &cli.Command{
		Name:    "live",
		Usage:   "Trade a pair on Binance",
		Version: version.GetVersion(),
		Flags:   []cli.Flag{configFlag},
		Action:  runAction,
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Validate the config and exit",
				Flags:  []cli.Flag{configFlag},
				Action: checkAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
