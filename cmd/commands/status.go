package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jmaren/registra/internal/gateway"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check the chat backend health",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			gw := gateway.NewClient(cfg.Client.BaseURL, cfg.Client.Timeout.Duration())
			if err := gw.Health(ctx); err != nil {
				fmt.Printf("Backend: NOT REACHABLE (%s)\n", cfg.Client.BaseURL)
				return nil
			}
			fmt.Printf("Backend: OK (%s)\n", cfg.Client.BaseURL)
			return nil
		},
	}
}
