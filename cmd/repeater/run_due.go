package main

import (
	"context"
	"fmt"
	"time"

	"record_repeater/internal/domain/repetition"

	"github.com/spf13/cobra"
)

var asOfFlag string

var runDueCmd = &cobra.Command{
	Use:   "run-due",
	Short: "Produce clones for due repetitions once and exit",
	Long: `Processes every repetition due on or before the given date. Meant to be
invoked by an external timer or job queue instead of the built-in scheduler.`,
	Args: cobra.NoArgs,
	RunE: runDue,
}

var listDueCmd = &cobra.Command{
	Use:   "list-due",
	Short: "List repetitions due on or before a date",
	Args:  cobra.NoArgs,
	RunE:  runListDue,
}

func init() {
	for _, c := range []*cobra.Command{runDueCmd, listDueCmd} {
		c.Flags().StringVar(&asOfFlag, "date", "", "reference date as YYYY-MM-DD (default today)")
		rootCmd.AddCommand(c)
	}
}

func parseAsOfFlag() (time.Time, error) {
	if asOfFlag == "" {
		return repetition.DateOf(time.Now()), nil
	}
	d, err := repetition.ParseDate(asOfFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", asOfFlag, err)
	}
	return d, nil
}

func runDue(cmd *cobra.Command, args []string) error {
	asOf, err := parseAsOfFlag()
	if err != nil {
		return err
	}
	svc, db, err := newService(nil)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := svc.ProcessDue(context.Background(), asOf)
	if err != nil {
		return fmt.Errorf("processing due repetitions failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.String())
	if report.Failed > 0 {
		return fmt.Errorf("%d repetitions failed", report.Failed)
	}
	return nil
}

func runListDue(cmd *cobra.Command, args []string) error {
	asOf, err := parseAsOfFlag()
	if err != nil {
		return err
	}
	svc, db, err := newService(nil)
	if err != nil {
		return err
	}
	defer db.Close()

	rules, err := svc.DueRepetitions(context.Background(), asOf)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(rules) == 0 {
		fmt.Fprintf(out, "Nothing is due on or before %s.\n", asOf.Format(repetition.DateLayout))
		return nil
	}
	for _, r := range rules {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.RecordType, r.RecordName, r.PeriodUnit, r.NextDueDate.Format(repetition.DateLayout))
	}
	return nil
}
