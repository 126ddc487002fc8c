package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jmaren/registra/internal/config"
	"github.com/jmaren/registra/internal/dialog"
	"github.com/jmaren/registra/internal/enrollment"
	"github.com/jmaren/registra/internal/server"
	"github.com/jmaren/registra/internal/transcripts"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the registra chat backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}

	vocab := dialog.DefaultVocabulary()
	if cfg.Data.Vocab != "" {
		vocab, err = dialog.LoadVocabulary(cfg.Data.Vocab)
		if err != nil {
			return fmt.Errorf("load vocab: %w", err)
		}
	}

	if err := os.MkdirAll(config.RegistraPath(), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := enrollment.Open(cfg.Data.Path, cfg.Data.CacheTTL.Duration())
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer data.Close()

	var extractor dialog.Extractor = dialog.NewRuleExtractor(vocab)
	var responder dialog.Responder = dialog.NewTemplateResponder(vocab)
	if cfg.Model.Provider != "" {
		chatModel, err := dialog.NewChatModel(ctx, cfg.Model)
		if err != nil {
			return fmt.Errorf("init model: %w", err)
		}
		extractor = dialog.NewLLMExtractor(chatModel, vocab)
		responder = dialog.NewLLMResponder(chatModel, vocab)
		slog.Info("chat model ready", "provider", cfg.Model.Provider, "model", cfg.Model.Model)
	}

	engine := dialog.NewEngine(extractor, responder, data, slog.Default())
	store := transcripts.NewFileStore(config.ConversationsPath())

	srv := server.NewServer(engine, store, cfg.Server.Host, cfg.Server.Port, slog.Default())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
