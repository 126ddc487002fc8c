package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/jmaren/registra/internal/config"
	"github.com/jmaren/registra/internal/transcripts"
)

// NewConversationsCommand returns the conversations subcommand.
func NewConversationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "conversations",
		Usage: "Inspect persisted conversations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all conversations",
				Action: runConversationsList,
			},
			{
				Name:      "show",
				Usage:     "Show messages in a conversation",
				ArgsUsage: "<conversation_id>",
				Action:    runConversationsShow,
			},
		},
		DefaultCommand: "list",
	}
}

func newTranscriptStore() *transcripts.FileStore {
	return transcripts.NewFileStore(config.ConversationsPath())
}

func runConversationsList(_ context.Context, _ *cli.Command) error {
	store := newTranscriptStore()

	list, err := store.List()
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tMESSAGES\tUPDATED\tQUERY")
	for _, t := range list {
		query := strings.ReplaceAll(t.Query.Summary(), "\n", ", ")
		if query == "No parameters collected yet." {
			query = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			t.ID,
			t.Status,
			t.MessageCount,
			t.UpdatedAt.Format("2006-01-02 15:04"),
			query,
		)
	}
	return w.Flush()
}

func runConversationsShow(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: registra conversations show <conversation_id>")
	}

	store := newTranscriptStore()

	msgs, err := store.LoadMessages(id)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	if len(msgs) == 0 {
		fmt.Println("No messages in this conversation.")
		return nil
	}

	for _, m := range msgs {
		fmt.Printf("[%s] %s: %s\n", m.Ts.Format("15:04:05"), m.Role, m.Content)
	}
	return nil
}
