package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	domainTelegram "record_repeater/internal/domain/telegram"
	"record_repeater/internal/infra/logger"
	"record_repeater/internal/infra/scheduler"
	"record_repeater/internal/infra/telegram"

	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the Telegram bot",
	Long: `Processes due repetitions on the configured cron schedule. When
TELEGRAM_TOKEN is set the admin bot is started as well.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	mainLogger := logger.Component("main")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		bot      *telebot.Bot
		notifier domainTelegram.Client
		err      error
	)
	if cfg.BotEnabled() {
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := logger.Component("telebot").WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
				}
				entry.Error("Telegram handler error")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			return fmt.Errorf("could not create Telegram bot: %w", err)
		}
		notifier = telegram.NewTelebotAdapter(bot)
	}

	svc, db, err := newService(notifier)
	if err != nil {
		return err
	}
	defer db.Close()

	repScheduler := scheduler.NewRepetitionScheduler(svc, logger.Component("scheduler"), cfg.CronSpecRepetition)
	if err := repScheduler.Start(); err != nil {
		return err
	}

	if bot != nil {
		botLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, botLogger)
		telegram.RegisterRepetitionHandlers(ctx, bot, svc, cfg.AdminTelegramID, botLogger)
		mainLogger.Info("Telegram command handlers registered.")
		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go bot.Start()
	} else {
		mainLogger.Info("TELEGRAM_TOKEN is not set, running without the bot.")
	}

	mainLogger.Info("Application setup complete.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	if bot != nil {
		bot.Stop()
	}
	repScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
	return nil
}
