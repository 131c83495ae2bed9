package cmd

import (
	"fmt"

	"ski-portal/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmdPersistentFlags struct {
	EnvFile string
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootCmdPersistentFlags.EnvFile, "env", "e", ".env", "Path to the env file; process environment overrides it")
}

var rootCmd = &cobra.Command{
	Use:   "ski-portal",
	Short: "Ski resort browser with weather, reviews, and an admin portal",
	Example: `ski-portal serve
  ski-portal migrate --env /etc/ski-portal/.env
  ski-portal promote admin@example.com`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         serve,
}

// bootstrap loads configuration and the logger every command needs.
func bootstrap() (*utils.Config, *zap.Logger, error) {
	config, err := utils.LoadConfigFile(rootCmdPersistentFlags.EnvFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		fmt.Printf("Failed to init logger: %v. Using production logger.\n", err)
		logger, _ = zap.NewProduction()
	}

	return config, logger, nil
}

func Execute() error {
	return rootCmd.Execute()
}
