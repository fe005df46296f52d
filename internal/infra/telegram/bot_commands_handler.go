// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			return c.Send(fmt.Sprintf("Hello, %s! Record repetitions are ready. Use /help for the list of commands.", c.Sender().FirstName))
		}
		logCtx.Info("User is unknown")
		return c.Send("This bot manages record repetitions for its administrator only.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID != adminTelegramID {
			return c.Send("No commands are available to you.")
		}

		var helpText strings.Builder
		helpText.WriteString("Administrator commands:\n\n")
		helpText.WriteString("`/repeat <Type> <Name> <Daily|Weekly|Monthly|Quarterly|Yearly> [Start] [End]`\n - Repeat a record. Dates are YYYY-MM-DD, write spaces in the type as underscores.\n\n")
		helpText.WriteString("`/repetitions`\n - List all repetitions.\n\n")
		helpText.WriteString("`/stop_repeat <ID>`\n - Stop a repetition. Clones already made are kept.\n\n")
		helpText.WriteString("`/clones <ID>`\n - List records produced by a repetition.\n\n")
		helpText.WriteString("`/due [Date]`\n - List repetitions due on or before the date (today by default).\n\n")
		helpText.WriteString("`/run_due [Date]`\n - Produce clones for due repetitions now.\n\n")
		helpText.WriteString("`/repeatable`\n - List record types that can be repeated.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
