package cmd

import (
	"fmt"

	"ski-portal/internal/data/repository"
	"ski-portal/internal/gravatar"
	"ski-portal/internal/usecase"
	"ski-portal/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant admin rights to an existing account",
	Long:  `Promote bootstraps the first administrator; later admins can be managed from the admin portal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		db, err := database.InitDB(config.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		users := usecase.NewUserService(repository.NewRepository(db, logger), gravatar.New(config.Gravatar), logger)

		user, err := users.PromoteByEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		logger.Info("User promoted to admin",
			zap.String("user_id", user.ID),
			zap.String("username", user.Username))
		fmt.Printf("%s (%s) is now an admin\n", user.Username, user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}
