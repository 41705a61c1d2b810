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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicore/clinic-api/internal/config"
	"github.com/clinicore/clinic-api/internal/domain/appointment"
	"github.com/clinicore/clinic-api/internal/domain/billing"
	"github.com/clinicore/clinic-api/internal/domain/catalog"
	"github.com/clinicore/clinic-api/internal/domain/clinic"
	"github.com/clinicore/clinic-api/internal/domain/patient"
	"github.com/clinicore/clinic-api/internal/domain/reminder"
	"github.com/clinicore/clinic-api/internal/domain/staff"
	"github.com/clinicore/clinic-api/internal/platform/auth"
	"github.com/clinicore/clinic-api/internal/platform/db"
	"github.com/clinicore/clinic-api/internal/platform/middleware"
	"github.com/clinicore/clinic-api/internal/platform/notification"
	"github.com/clinicore/clinic-api/pkg/apperr"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Multi-tenant clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(clinicCmd())
	rootCmd.AddCommand(remindCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
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

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func clinicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Manage clinics",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new clinic",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			tz, _ := cmd.Flags().GetString("timezone")
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := clinic.NewService(clinic.NewRepoPG(pool))
			c := &clinic.Clinic{Name: name, Email: &email, Timezone: tz}
			if err := svc.Register(ctx, c); err != nil {
				return err
			}

			fmt.Printf("Clinic created: %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Clinic name")
	createCmd.Flags().String("email", "", "Contact email")
	createCmd.Flags().String("timezone", "UTC", "IANA timezone")

	cmd.AddCommand(createCmd)
	return cmd
}

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Reminder dispatch",
	}

	onceCmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single reminder dispatch pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			d := newDispatcher(cfg, pool, logger)
			return d.Tick(ctx)
		},
	}
	cmd.AddCommand(onceCmd)

	return cmd
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// newNotifier picks the outbound channels: a real SMTP relay when one is
// configured, otherwise log-only stand-ins.
func newNotifier(cfg *config.Config, logger zerolog.Logger) *notification.Manager {
	var email notification.EmailSender = &notification.LogEmailSender{Logger: logger}
	if cfg.SMTPHost != "" {
		email = notification.NewSMTPSender(notification.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
	}
	sms := &notification.LogSMSSender{Logger: logger}
	return notification.NewManager(email, sms)
}

func newDispatcher(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *reminder.Dispatcher {
	return reminder.NewDispatcher(
		reminder.NewScheduleRepoPG(pool),
		reminder.NewHistoryRepoPG(pool),
		appointment.NewRepoPG(pool),
		patient.NewService(patient.NewRepoPG(pool)),
		clinic.NewService(clinic.NewRepoPG(pool)),
		newNotifier(cfg, logger),
		logger,
		time.Duration(cfg.ReminderTickMinutes)*time.Minute,
	)
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	switch cfg.ResolvedAuthMode() {
	case "development":
		e.Use(auth.DevAuthMiddleware(cfg.DevClinicID))
	case "hmac":
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.JWTSecret),
		}))
	default:
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:  cfg.AuthIssuer,
			JWKSURL: cfg.AuthJWKSURL,
		}))
	}

	// Tenant scoping
	e.Use(db.ClinicMiddleware())

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	api := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.RequestTimeout(30 * time.Second))

	// Domain wiring
	clinicSvc := clinic.NewService(clinic.NewRepoPG(pool))
	clinic.NewHandler(clinicSvc).RegisterRoutes(api)

	staffSvc := staff.NewService(staff.NewRepoPG(pool), staff.NewHolidayRepoPG(pool))
	staff.NewHandler(staffSvc).RegisterRoutes(api)

	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	catalogSvc := catalog.NewCatalog(catalog.NewDisciplineRepoPG(pool), catalog.NewServiceRepoPG(pool))
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)

	apptSvc := appointment.NewService(appointment.NewRepoPG(pool), staffSvc, patientSvc, catalogSvc)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)

	billingSvc := billing.NewService(billing.NewRepoPG(pool), patientSvc)
	billing.NewHandler(billingSvc).RegisterRoutes(api)

	reminderSvc := reminder.NewService(reminder.NewScheduleRepoPG(pool), reminder.NewHistoryRepoPG(pool), cfg.ReminderPriorMinutes)
	reminder.NewHandler(reminderSvc).RegisterRoutes(api)

	// Reminder dispatcher
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	go newDispatcher(cfg, pool, logger).Run(dispatchCtx)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stopDispatch()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// errorHandler maps domain errors onto HTTP statuses in one place, so
// handlers return errors directly instead of building responses.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := apperr.HTTPStatus(err)
		message := err.Error()

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			message = fmt.Sprintf("%v", he.Message)
		}

		var ae *apperr.Error
		if errors.As(err, &ae) {
			message = ae.Message
		}

		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
			message = "internal server error"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, map[string]string{"error": message})
	}
}
