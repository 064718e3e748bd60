package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eyenotes/emr/internal/config"
	"github.com/eyenotes/emr/internal/domain/alert"
	"github.com/eyenotes/emr/internal/domain/emr"
	"github.com/eyenotes/emr/internal/domain/patient"
	"github.com/eyenotes/emr/internal/domain/visit"
	"github.com/eyenotes/emr/internal/platform/auth"
	"github.com/eyenotes/emr/internal/platform/db"
	"github.com/eyenotes/emr/internal/platform/middleware"
	"github.com/eyenotes/emr/internal/store"
)

// visitLoggerAdapter adapts the visit service to the patient service's
// VisitLogger interface, avoiding a direct dependency between the two
// domain packages.
type visitLoggerAdapter struct {
	svc *visit.Service
}

func (a *visitLoggerAdapter) LogInitial(ctx context.Context, p *patient.Patient) error {
	v := &visit.Visit{
		PatientID: p.ID,
		VisitType: p.VisitType,
		Purpose:   p.Purpose,
	}
	return a.svc.Log(ctx, v)
}

// detailAdapter feeds the single-patient response with visit history and
// active alerts from their own domains.
type detailAdapter struct {
	visits *visit.Service
	alerts *alert.Service
}

type visitRow struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

func (a *detailAdapter) VisitHistory(ctx context.Context, patientID string) (interface{}, error) {
	visits, err := a.visits.History(ctx, patientID)
	if err != nil {
		return nil, err
	}
	rows := make([]visitRow, 0, len(visits))
	for _, v := range visits {
		rows = append(rows, visitRow{
			Date:     v.Date.Format("02-Jan-06"),
			Location: v.Location,
			Type:     v.TypeCode(),
		})
	}
	return rows, nil
}

type alertRow struct {
	AlertType  string `json:"alertType"`
	AlertValue string `json:"alertValue"`
}

func (a *detailAdapter) ActiveAlerts(ctx context.Context, patientID string) (interface{}, error) {
	alerts, err := a.alerts.ListActive(ctx, patientID)
	if err != nil {
		return nil, err
	}
	rows := make([]alertRow, 0, len(alerts))
	for _, al := range alerts {
		rows = append(rows, alertRow{AlertType: al.AlertType, AlertValue: al.AlertValue})
	}
	return rows, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "emr-server",
		Short: "Ophthalmology clinic EMR API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the EMR API server",
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

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-30s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-30s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo patient roster",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			repo := patient.NewRepoPG(pool)
			svc := patient.NewService(repo)
			for _, p := range store.SeedPatients() {
				seed := p
				if err := svc.Register(ctx, &seed); err != nil {
					fmt.Printf("skipping %s (%s): %v\n", p.Name, p.MRNumber, err)
					continue
				}
				fmt.Printf("seeded %s (%s)\n", p.Name, p.MRNumber)
			}
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

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

	// Services
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	visitSvc := visit.NewService(visit.NewRepoPG(pool), cfg.DefaultClinic, cfg.DefaultCity)
	alertSvc := alert.NewService(alert.NewRepoPG(pool))
	emrSvc := emr.NewService(emr.NewRepoPG(pool))

	// Cross-domain wiring stays behind small interfaces so the domain
	// packages never import each other.
	patientSvc.SetVisitLogger(&visitLoggerAdapter{svc: visitSvc})
	patientSvc.SetAlertDeriver(alertSvc)
	visitSvc.SetPatientStamper(patientSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	// Login stays outside the auth guard.
	secret := []byte(cfg.JWTSecret)
	auth.NewHandler(secret, cfg.TokenTTL).RegisterRoutes(api)

	guarded := e.Group("/api")
	if cfg.IsDev() {
		guarded.Use(auth.DevMiddleware())
	} else {
		guarded.Use(auth.Middleware(secret))
	}
	guarded.Use(middleware.Audit(logger))

	patient.NewHandler(patientSvc, &detailAdapter{visits: visitSvc, alerts: alertSvc}).RegisterRoutes(guarded)
	visit.NewHandler(visitSvc).RegisterRoutes(guarded)
	alert.NewHandler(alertSvc).RegisterRoutes(guarded)
	emr.NewHandler(emrSvc).RegisterRoutes(guarded)

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
