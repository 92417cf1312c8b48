package main

import (
	"database/sql"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/internal/database"
	"github.com/CinePrep/cineprep/pkg/logger"
)

const skipConfigAnnotation = "skipConfigLoad"

type commandContext struct {
	envFile  string
	logLevel string

	loadConfig func(opts config.LoadOptions) (*config.Config, error)
	openDB     func(cfg *config.Config) (*sql.DB, error)
	logOutput  io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{
		loadConfig: config.LoadWithOptions,
		openDB: func(cfg *config.Config) (*sql.DB, error) {
			return database.Open(&cfg.Database, false)
		},
		logOutput: os.Stderr,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = c.loadConfig(config.LoadOptions{EnvFile: c.envFile})
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() logger.Logger {
	zerolog.SetGlobalLevel(logger.ParseLevel(c.logLevel))
	return logger.NewLoggerWithWriter(zerolog.ConsoleWriter{Out: c.logOutput, NoColor: true})
}

// withDB opens the application database for the duration of fn.
func (c *commandContext) withDB(fn func(cfg *config.Config, db *sql.DB) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	db, err := c.openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cfg, db)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cineprepctl",
		Short:         "CinePrep operations CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.envFile, "env-file", ".env", "Environment file read before the process environment")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newPlansCommand(ctx))
	rootCmd.AddCommand(newCostCommand())

	return rootCmd
}
