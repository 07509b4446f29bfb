package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clinic-similar-cases/internal/agent"
	"clinic-similar-cases/internal/cases"
	"clinic-similar-cases/internal/config"
	"clinic-similar-cases/internal/platform/db"
	"clinic-similar-cases/internal/platform/middleware"
	"clinic-similar-cases/internal/platform/telegram"
	"clinic-similar-cases/internal/report"
	"clinic-similar-cases/internal/similarity"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-server",
		Short:        "Similar historical cases for doctors",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(rankCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			applied, err := db.Migrate(cfg.DatabaseURL, dir)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if applied {
				fmt.Println("Migrations applied successfully.")
			} else {
				fmt.Println("No pending migrations.")
			}
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newAnalyst returns nil when no language model is configured so the case
// service never holds a typed nil.
func newAnalyst(cfg *config.Config, logger zerolog.Logger) cases.Analyst {
	opts := agent.Options{
		RatePerSec:  cfg.LLMRatePerSec,
		HTTPTimeout: cfg.LLMTimeout,
	}
	switch cfg.LLMProvider {
	case "deepseek":
		opts.APIKey = cfg.DeepSeekAPIKey
		opts.BaseURL = cfg.DeepSeekBaseURL
		opts.Model = cfg.DeepSeekModel
	case "ollama":
		opts.BaseURL = cfg.OllamaURL
		opts.Model = cfg.OllamaModel
	}

	a, err := agent.New(cfg.LLMProvider, opts)
	if err != nil {
		if !errors.Is(err, agent.ErrNotConfigured) || cfg.LLMProvider != "none" {
			logger.Warn().Err(err).Msg("analyst disabled")
		}
		logger.Info().Msg("similar cases are ranked by the local scorer only")
		return nil
	}
	logger.Info().Str("analyst", a.Name()).Msg("analyst enabled")
	return a
}

func newReportService(cfg *config.Config, logger zerolog.Logger) cases.ReportService {
	if cfg.TelegramBotToken == "" || cfg.DoctorChatID == 0 {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN or DOCTOR_CHAT_ID not set, reports disabled")
		return nil
	}
	return report.NewService(telegram.NewClient(cfg.TelegramBotToken), cfg.DoctorChatID, logger)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if err := cfg.RequireDatabase(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts, cfg.DBConnectDelay, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer sqlDB.Close()
	logger.Info().Msg("connected to database")

	if applied, err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logger.Error().Err(err).Msg("migration up failed")
	} else if applied {
		logger.Info().Msg("migrations applied")
	}

	ranker := similarity.NewRanker(cfg.Thresholds())
	caseSvc := cases.NewService(
		cases.NewRepository(sqlDB),
		newAnalyst(cfg, logger),
		ranker,
		newReportService(cfg, logger),
		logger,
		cfg.LLMTimeout,
		cases.WithHistoryLimit(cfg.HistoryLimit),
	)
	caseHandler := cases.NewHandler(caseSvc, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORSOrigin))

	r.Get("/healthz", db.HealthHandler(sqlDB))
	r.Route("/api", func(r chi.Router) {
		cases.RegisterRoutes(r, caseHandler)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
