// Package commands wires the registra CLI.
package commands

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jmaren/registra/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "registra",
		Usage: "Conversational enrollment analytics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewServeCommand(),
			NewChatCommand(),
			NewAskCommand(),
			NewStatusCommand(),
			NewConversationsCommand(),
			NewDataCommand(),
		},
	}
}

func setupLogging(cmd *cli.Command) {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("config"))
}
