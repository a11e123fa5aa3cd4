package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/hamprep/internal/config"
	"github.com/example/hamprep/internal/database"
	"github.com/example/hamprep/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "hamprep",
	Short:         "Spaced-repetition study server for the amateur radio Technician exam",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config/config.yaml)")
}

// env is what every command needs: configuration, a logger and the database.
type env struct {
	cfg *config.Config
	log *logrus.Logger
	db  *sqlx.DB
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	log.WithField("driver", cfg.Database.Driver).Debug("database ready")

	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.WithError(err).Warn("failed to close database")
	}
}
