package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	botgo "github.com/convexim/botgo"
	"github.com/convexim/botgo/builder"
	"github.com/convexim/botgo/config"
	"github.com/convexim/botgo/httpadapter"
	"github.com/convexim/botgo/logger"
	"github.com/convexim/botgo/models"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bot webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}
		accounts, err := cfg.CredentialAccounts()
		if err != nil {
			return err
		}

		log := logger.New(logger.ParseLevel(cfg.LogLevel), os.Stderr)

		bot, err := botgo.New(botgo.Options{
			Collectors:    []*botgo.Collector{buildCollector()},
			Accounts:      accounts,
			Logger:        log,
			TaskLimit:     cfg.TaskLimit,
			StatusMessage: cfg.StatusMessage,
		})
		if err != nil {
			return err
		}
		bot.Use(bot.AuthMiddleware())

		srv := httpadapter.New(httpadapter.Config{ListenAddr: cfg.ListenAddr}, bot, log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(ctx) }()

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func buildCollector() *botgo.Collector {
	c := botgo.NewCollector()

	must(c.Command(botgo.CommandHandler{
		Body:        "/echo",
		Description: "Repeat the message back",
		Handler:     echoHandler,
	}))
	must(c.Default(func(ctx context.Context, msg *models.UserMessage) error {
		_, err := botgo.FromContext(ctx).AnswerText(ctx, msg, "Try /echo <text>.")
		return err
	}))
	must(c.ChatCreated(func(ctx context.Context, ev *models.ChatCreatedEvent) error {
		bot := botgo.FromContext(ctx)
		_, err := bot.SendMessage(ctx, ev.CommandBinding().BotID, ev.ChatID,
			&models.MessagePayload{Body: "Hello! I repeat whatever you /echo."})
		return err
	}))

	return c
}

func echoHandler(ctx context.Context, msg *models.UserMessage) error {
	payload, err := builder.New(msg.Argument()).Build()
	if err != nil {
		return err
	}
	_, err = botgo.FromContext(ctx).Answer(ctx, msg, payload)
	return err
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
