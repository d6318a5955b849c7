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

	"github.com/carelink/hms/internal/chat"
	"github.com/carelink/hms/internal/config"
	"github.com/carelink/hms/internal/domain/audit"
	"github.com/carelink/hms/internal/notify"
	"github.com/carelink/hms/internal/platform/auth"
	"github.com/carelink/hms/internal/platform/db"
	"github.com/carelink/hms/internal/platform/middleware"
)

// hubPermissionClient adapts the chat hub to notify.PermissionClient,
// avoiding a direct import between the notify and chat packages. A user with
// at least one live session can receive popups; anyone else stays in the
// default state. There is no UI round-trip on the server, so a permission
// request just re-checks the session table.
type hubPermissionClient struct {
	hub *chat.Hub
}

func (p *hubPermissionClient) Permission(_ context.Context, userID string) notify.Permission {
	if p.hub.SubscriberCount(userID) > 0 {
		return notify.PermissionGranted
	}
	return notify.PermissionDefault
}

func (p *hubPermissionClient) RequestPermission(ctx context.Context, userID string) (notify.Permission, error) {
	return p.Permission(ctx, userID), nil
}

// auditAccessRecorder adapts the audit service to the access-trail
// middleware so every API request lands in the persistent audit log.
type auditAccessRecorder struct {
	svc *audit.Service
}

func (r *auditAccessRecorder) RecordAccess(ctx context.Context, entry middleware.AccessEntry) error {
	e := &audit.Entry{
		UserID:    entry.UserID,
		UserRole:  entry.UserRole,
		Action:    entry.Action,
		Resource:  entry.Resource,
		Status:    entry.Status,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	}
	if entry.ResourceID != "" {
		id := entry.ResourceID
		e.ResourceID = &id
	}
	if entry.StatusCode >= 400 {
		msg := fmt.Sprintf("%s %s returned %d", entry.Method, entry.Path, entry.StatusCode)
		e.ErrorMessage = &msg
	}
	return r.svc.Record(ctx, e)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Communications API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

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

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.JWTSigningKey),
		}))
	}

	// Audit trail
	auditRepo := audit.NewRepoPG(pool)
	auditSvc := audit.NewService(auditRepo)
	e.Use(middleware.Audit(logger, &auditAccessRecorder{svc: auditSvc}))

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Chat
	hub := chat.NewHub(logger)
	chatRepo := chat.NewRepoPG(pool)
	chatSvc := chat.NewService(chatRepo, hub, logger)
	chatHandler := chat.NewHandler(hub, chatSvc)
	chatHandler.RegisterRoutes(apiV1)

	// Notifications. Browser popups ride the chat hub: a user with a live
	// session is considered permitted, everyone else stays in the default
	// state and the popup is skipped.
	store := notify.NewStore()
	emailSender := &notify.LogEmailSender{From: cfg.EmailFrom, Logger: logger}
	browser := notify.NewBrowserChannel(&hubPermissionClient{hub: hub}, hub)
	dispatcher := notify.NewDispatcher(store, emailSender, browser, logger)
	notifyHandler := notify.NewHandler(store, dispatcher)
	notifyHandler.RegisterRoutes(apiV1)

	// Audit routes
	auditHandler := audit.NewHandler(auditSvc)
	auditHandler.RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
