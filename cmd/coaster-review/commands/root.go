package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/coaster-review/config"
	"github.com/qs-lzh/coaster-review/internal/database"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "coaster-review",
	Short: "Reviews and ratings for amusement parks and roller coasters",
	Long: `coaster-review serves a catalog of parks and coasters where registered
users post reviews and the site aggregates them into ratings.

Configuration is read from the environment and an optional .env file:
  APP_ENV, ADDR, DATABASE_DSN, CACHE_URL, RABBIT_MQ_URL,
  SESSION_SECRET, BCRYPT_COST, RATING_CACHE_TTL`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// bootstrap loads the configuration, the logger and the database shared by
// every command.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	db, err := database.Open(cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}
