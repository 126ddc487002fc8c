package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jmaren/registra/clients/tui"
	"github.com/jmaren/registra/internal/chat"
	"github.com/jmaren/registra/internal/gateway"
)

// NewChatCommand returns the chat subcommand.
func NewChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Open the interactive chat client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Chat backend base URL (overrides config)",
			},
		},
		Action: runChat,
	}
}

func runChat(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseURL := cfg.Client.BaseURL
	if cmd.IsSet("backend") {
		baseURL = cmd.String("backend")
	}

	gw := gateway.NewClient(baseURL, cfg.Client.Timeout.Duration())
	conv := chat.NewConversation(gw, cfg.Greeter.Greeting)

	return tui.Run(conv, gw)
}
