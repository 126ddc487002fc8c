package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/jmaren/registra/internal/gateway"
)

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message to the backend and print the reply",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Chat backend base URL (overrides config)",
			},
			&cli.StringFlag{
				Name:    "conversation",
				Aliases: []string{"C"},
				Usage:   "Conversation ID to continue (empty = new conversation)",
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("usage: registra ask <message>")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	baseURL := cfg.Client.BaseURL
	if cmd.IsSet("backend") {
		baseURL = cmd.String("backend")
	}

	gw := gateway.NewClient(baseURL, cfg.Client.Timeout.Duration())

	conversationID := cmd.String("conversation")
	reply, err := gw.Send(ctx, message, conversationID)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	if conversationID == "" && reply.ConversationID != "" {
		fmt.Fprintf(os.Stderr, "conversation: %s\n", reply.ConversationID)
	}
	fmt.Println(reply.Response)
	return nil
}
