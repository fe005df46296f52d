package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"record_repeater/internal/app"
	"record_repeater/internal/domain/record"
	"record_repeater/internal/domain/repetition"
	domainTelegram "record_repeater/internal/domain/telegram"
	"record_repeater/internal/infra/config"
	idb "record_repeater/internal/infra/database"
	"record_repeater/internal/infra/logger"

	"github.com/spf13/cobra"
)

var cfg *config.AppConfig

var rootCmd = &cobra.Command{
	Use:   "repeater",
	Short: "Repeat records on a schedule",
	Long: `Repeater clones source records daily, weekly, monthly, quarterly or yearly
and links every clone back to the repetition that produced it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("could not load application configuration: %w", err)
		}
		logger.Init(cfg)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStores connects to the configured database and returns its repositories.
func openStores(databaseURL string) (*sql.DB, repetition.Repository, record.Repository, error) {
	if path, ok := strings.CutPrefix(databaseURL, idb.SQLitePrefix); ok {
		db, err := idb.NewSQLiteConnection(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return db, idb.NewSQLiteRepetitionRepository(db), idb.NewSQLiteRecordRepository(db), nil
	}

	db, err := idb.NewPostgresConnection(databaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return db, idb.NewPostgresRepetitionRepository(db), idb.NewPostgresRecordRepository(db), nil
}

// newService wires the repetition service. notifier may be nil.
func newService(notifier domainTelegram.Client) (*app.RepetitionService, *sql.DB, error) {
	log := logger.Component("main")

	plans, err := config.LoadCopyPlans(cfg.CopyPlansPath)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("record_types", plans.Types()).Info("Copy plans loaded")

	db, rules, records, err := openStores(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	log.Info("Database connection established successfully.")

	svc := app.NewRepetitionService(rules, records, plans, notifier, cfg.AdminTelegramID, logger.Component("repetition_service"))
	return svc, db, nil
}
