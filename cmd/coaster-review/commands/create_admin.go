package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qs-lzh/coaster-review/internal/database"
	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/repository"
	"github.com/qs-lzh/coaster-review/internal/service/domain"
)

var (
	adminUsername string
	adminPassword string
)

// createAdminCmd represents the create-admin command
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account. There is no way to sign up as an admin
through the site.

The password is taken from --password or, if empty, from ADMIN_PASSWORD.

Examples:
  coaster-review create-admin --username siteadmin --password 's3cret-pass'
  ADMIN_PASSWORD='s3cret-pass' coaster-review create-admin --username siteadmin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := adminPassword
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}

		cfg, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}()

		authService := domain.NewAuthService(db, repository.NewUserRepoGorm(db), cfg.BcryptCost, logger)
		user, err := authService.CreateUser(cmd.Context(), adminUsername, password, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created admin %q (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username (5-30 characters, no spaces)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (defaults to $ADMIN_PASSWORD)")
	createAdminCmd.MarkFlagRequired("username")
}
