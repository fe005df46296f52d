package telegram

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"record_repeater/internal/app"
	"record_repeater/internal/domain/repetition"
)

// parseRecordType turns a command argument into a record type name.
// Spaces cannot appear in an argument, so "Journal_Entry" means "Journal Entry".
func parseRecordType(arg string) string {
	return strings.ReplaceAll(arg, "_", " ")
}

// parseRepeatArgs parses: <RecordType> <RecordName> <Unit> [StartDate] [EndDate]
func parseRepeatArgs(args []string) (app.CreateRepetitionRequest, error) {
	var req app.CreateRepetitionRequest
	if len(args) < 3 || len(args) > 5 {
		return req, fmt.Errorf("expected 3 to 5 arguments, got %d", len(args))
	}

	req.RecordType = parseRecordType(args[0])
	req.RecordName = args[1]

	unit, err := repetition.ParsePeriodUnit(args[2])
	if err != nil {
		return req, err
	}
	req.PeriodUnit = unit

	if len(args) >= 4 {
		if req.StartDate, err = repetition.ParseDate(args[3]); err != nil {
			return req, fmt.Errorf("invalid start date %q, use YYYY-MM-DD", args[3])
		}
	}
	if len(args) == 5 {
		end, err := repetition.ParseDate(args[4])
		if err != nil {
			return req, fmt.Errorf("invalid end date %q, use YYYY-MM-DD", args[4])
		}
		req.EndDate = sql.NullTime{Time: end, Valid: true}
	}
	return req, nil
}

func parseRuleID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a repetition ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("repetition ID must be a positive number")
	}
	return id, nil
}

// parseAsOf reads an optional date argument, defaulting to today.
func parseAsOf(args []string, now time.Time) (time.Time, error) {
	if len(args) == 0 {
		return repetition.DateOf(now), nil
	}
	d, err := repetition.ParseDate(args[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", args[0])
	}
	return d, nil
}

func formatRule(r *repetition.Rule) string {
	end := "none"
	if r.EndDate.Valid {
		end = r.EndDate.Time.Format(repetition.DateLayout)
	}
	return fmt.Sprintf("#%d %s %s: %s from %s until %s, next %s (%s, %d periods)",
		r.ID, r.RecordType, r.RecordName, r.PeriodUnit,
		r.StartDate.Format(repetition.DateLayout), end,
		r.NextDueDate.Format(repetition.DateLayout), r.Status, r.PeriodCount)
}
