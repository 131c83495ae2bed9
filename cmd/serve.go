package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ski-portal/internal/adaptor"
	"ski-portal/internal/data/repository"
	"ski-portal/internal/scheduler"
	"ski-portal/internal/wire"
	"ski-portal/pkg/database"
	"ski-portal/pkg/utils"
	"ski-portal/pkg/weather"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmdFlags struct {
	Migrate bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server and background jobs",
	RunE:  serve,
}

func init() {
	serveCmd.Flags().BoolVar(&serveCmdFlags.Migrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, _ []string) error {
	config, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if serveCmdFlags.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Database schema applied")
	}

	repos := repository.NewRepository(db, logger)
	forecasts := weather.NewHTTPClient(config.Weather.BaseURL, config.Weather.RequestTimeout)

	var (
		jobs  *scheduler.Scheduler
		board adaptor.JobBoard
	)
	if config.Scheduler.Enabled {
		jobs, err = scheduler.New(logger)
		if err != nil {
			return err
		}
		board = jobs
	}

	app, err := wire.Wiring(repos, config, forecasts, board, logger)
	if err != nil {
		return err
	}

	if jobs != nil {
		if err := startScheduler(jobs, app, repos, config.Scheduler); err != nil {
			return err
		}
		defer func() {
			if err := jobs.Stop(); err != nil {
				logger.Warn("Failed to stop scheduler", zap.Error(err))
			}
		}()
	}

	if err := APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func startScheduler(jobs *scheduler.Scheduler, app *wire.App, repos *repository.Repository, config utils.SchedulerConfig) error {
	if err := jobs.RegisterJobs(config, repos.Session, app.Service.Review); err != nil {
		_ = jobs.Stop()
		return err
	}

	jobs.Start()
	return nil
}
