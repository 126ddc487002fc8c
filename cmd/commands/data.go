package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jmaren/registra/internal/config"
	"github.com/jmaren/registra/internal/enrollment"
)

// NewDataCommand returns the data subcommand.
func NewDataCommand() *cli.Command {
	return &cli.Command{
		Name:  "data",
		Usage: "Manage the enrollment dataset",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import dataset rows from a CSV export",
				ArgsUsage: "<file.csv>",
				Action:    runDataImport,
			},
			{
				Name:   "count",
				Usage:  "Print the number of dataset rows",
				Action: runDataCount,
			},
		},
	}
}

func openDataset(cmd *cli.Command) (*enrollment.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(config.RegistraPath(), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return enrollment.Open(cfg.Data.Path, cfg.Data.CacheTTL.Duration())
}

func runDataImport(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: registra data import <file.csv>")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, err := enrollment.ReadCSV(f)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no rows in %s", path)
	}

	store, err := openDataset(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Insert(rows); err != nil {
		return err
	}

	fmt.Printf("Imported %d rows.\n", len(rows))
	return nil
}

func runDataCount(_ context.Context, cmd *cli.Command) error {
	store, err := openDataset(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Count()
	if err != nil {
		return err
	}
	fmt.Printf("%d rows.\n", n)
	return nil
}
