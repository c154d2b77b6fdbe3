package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qs-lzh/coaster-review/internal/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}()

		if err := database.Migrate(db); err != nil {
			return err
		}
		logger.Info("database migrated")
		return nil
	},
}
