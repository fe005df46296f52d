package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"record_repeater/internal/app"
	"record_repeater/internal/domain/repetition"
	idb "record_repeater/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const unauthorizedReply = "Error: you are not allowed to run this command."

// RegisterRepetitionHandlers registers the admin commands that manage repetitions.
func RegisterRepetitionHandlers(ctx context.Context, b *telebot.Bot, svc *app.RepetitionService, adminTelegramID int64, baseLogger *logrus.Entry) {
	// adminOnly wraps a handler with the sender check and a per-command logger.
	adminOnly := func(command string, h func(c telebot.Context, log *logrus.Entry) error) {
		b.Handle(command, func(c telebot.Context) error {
			handlerLogger := baseLogger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			handlerLogger.Info("Command received")
			if c.Sender().ID != adminTelegramID {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(unauthorizedReply)
			}
			return h(c, handlerLogger)
		})
	}

	adminOnly("/repeat", func(c telebot.Context, log *logrus.Entry) error {
		req, err := parseRepeatArgs(c.Args())
		if err != nil {
			log.WithError(err).Warn("Invalid command format")
			return c.Send(fmt.Sprintf("Invalid command: %s.\nUsage: /repeat <Type> <Name> <Unit> [Start] [End]", err.Error()))
		}

		rule, err := svc.CreateRepetition(ctx, req)
		if err != nil {
			logWithError := log.WithError(err)
			switch {
			case errors.Is(err, repetition.ErrInvalidPeriodUnit),
				errors.Is(err, repetition.ErrInvalidDateRange),
				errors.Is(err, repetition.ErrRecordTypeNotRepeatable),
				errors.Is(err, repetition.ErrAlreadyOnRepetition):
				logWithError.Warn("Repetition rejected")
				return c.Send(fmt.Sprintf("Error: %s.", err.Error()))
			case errors.Is(err, idb.ErrRecordNotFound):
				logWithError.Warn("Source record not found")
				return c.Send(fmt.Sprintf("Record %s %s not found.", req.RecordType, req.RecordName))
			default:
				logWithError.Error("Failed to create repetition")
				return c.Send(fmt.Sprintf("An error occurred while creating the repetition: %s", err.Error()))
			}
		}

		log.WithField("repetition_id", rule.ID).Info("Repetition created successfully")
		return c.Send("Repetition created: " + formatRule(rule))
	})

	adminOnly("/repetitions", func(c telebot.Context, log *logrus.Entry) error {
		rules, err := svc.ListRepetitions(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list repetitions")
			return c.Send(fmt.Sprintf("An error occurred while listing repetitions: %s", err.Error()))
		}
		if len(rules) == 0 {
			return c.Send("There are no repetitions.")
		}

		var response strings.Builder
		response.WriteString("--- Repetitions ---\n")
		for _, r := range rules {
			response.WriteString(formatRule(r))
			response.WriteString("\n")
		}
		return c.Send(response.String())
	})

	adminOnly("/stop_repeat", func(c telebot.Context, log *logrus.Entry) error {
		id, err := parseRuleID(c.Args())
		if err != nil {
			return c.Send(fmt.Sprintf("Invalid command: %s.\nUsage: /stop_repeat <ID>", err.Error()))
		}
		log = log.WithField("repetition_id", id)

		rule, err := svc.StopRepetition(ctx, id)
		if err != nil {
			if errors.Is(err, idb.ErrRuleNotFound) {
				log.Warn("Repetition to stop not found")
				return c.Send(fmt.Sprintf("Repetition %d not found.", id))
			}
			log.WithError(err).Error("Failed to stop repetition")
			return c.Send(fmt.Sprintf("An error occurred while stopping the repetition: %s", err.Error()))
		}
		return c.Send(fmt.Sprintf("Repetition %d of %s %s stopped.", rule.ID, rule.RecordType, rule.RecordName))
	})

	adminOnly("/clones", func(c telebot.Context, log *logrus.Entry) error {
		id, err := parseRuleID(c.Args())
		if err != nil {
			return c.Send(fmt.Sprintf("Invalid command: %s.\nUsage: /clones <ID>", err.Error()))
		}

		clones, err := svc.ListClones(ctx, id)
		if err != nil {
			if errors.Is(err, idb.ErrRuleNotFound) {
				return c.Send(fmt.Sprintf("Repetition %d not found.", id))
			}
			log.WithError(err).Error("Failed to list clones")
			return c.Send(fmt.Sprintf("An error occurred while listing clones: %s", err.Error()))
		}
		if len(clones) == 0 {
			return c.Send(fmt.Sprintf("Repetition %d has not produced any records yet.", id))
		}

		var response strings.Builder
		fmt.Fprintf(&response, "--- Records produced by repetition %d ---\n", id)
		for _, rec := range clones {
			fmt.Fprintf(&response, "%s (due %s)\n", rec.Name, rec.DueDate.Time.Format(repetition.DateLayout))
		}
		return c.Send(response.String())
	})

	adminOnly("/due", func(c telebot.Context, log *logrus.Entry) error {
		asOf, err := parseAsOf(c.Args(), svc.Today())
		if err != nil {
			return c.Send(fmt.Sprintf("Invalid command: %s.\nUsage: /due [YYYY-MM-DD]", err.Error()))
		}

		rules, err := svc.DueRepetitions(ctx, asOf)
		if err != nil {
			log.WithError(err).Error("Failed to list due repetitions")
			return c.Send(fmt.Sprintf("An error occurred while listing due repetitions: %s", err.Error()))
		}
		if len(rules) == 0 {
			return c.Send(fmt.Sprintf("Nothing is due on or before %s.", asOf.Format(repetition.DateLayout)))
		}

		var response strings.Builder
		fmt.Fprintf(&response, "--- Due on or before %s ---\n", asOf.Format(repetition.DateLayout))
		for _, r := range rules {
			response.WriteString(formatRule(r))
			response.WriteString("\n")
		}
		return c.Send(response.String())
	})

	adminOnly("/run_due", func(c telebot.Context, log *logrus.Entry) error {
		asOf, err := parseAsOf(c.Args(), svc.Today())
		if err != nil {
			return c.Send(fmt.Sprintf("Invalid command: %s.\nUsage: /run_due [YYYY-MM-DD]", err.Error()))
		}

		report, err := svc.ProcessDue(ctx, asOf)
		if errors.Is(err, repetition.ErrRunDateInFuture) {
			return c.Send(fmt.Sprintf("Cannot run repetitions for %s: the date is in the future.", asOf.Format(repetition.DateLayout)))
		}
		if err != nil {
			log.WithError(err).Error("Manual repetition run failed")
			return c.Send(fmt.Sprintf("An error occurred while processing due repetitions: %s", err.Error()))
		}
		return c.Send(report.String())
	})

	adminOnly("/repeatable", func(c telebot.Context, log *logrus.Entry) error {
		types := svc.ListRepeatableTypes()
		if len(types) == 0 {
			return c.Send("No record types allow repetition.")
		}
		return c.Send("Repeatable record types:\n" + strings.Join(types, "\n"))
	})
}
