package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"travel-admin/controllers"
	"travel-admin/routes"
	"travel-admin/validators"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP listen port (overrides PORT)")

	return cmd
}

func runServe(ctx context.Context, port string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if port != "" {
		cfg.Port = port
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	seeded, err := a.accounts.SeedAdmin(ctx, validators.CreateAdminRequest{
		Email:    cfg.SeedAdminEmail,
		Name:     cfg.SeedAdminName,
		Password: cfg.SeedAdminPassword,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if seeded {
		log.Info("seed admin created", "email", cfg.SeedAdminEmail)
	}

	uploadDir := ""
	if cfg.S3Bucket == "" {
		uploadDir = cfg.UploadDir
		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			return fmt.Errorf("create upload dir: %w", err)
		}
	}

	router := routes.SetupRouter(routes.Deps{
		Auth: controllers.NewAuthController(a.accounts, controllers.CookieConfig{
			Secure: cfg.IsProduction(),
			MaxAge: a.tokens.SessionTTL(),
		}),
		Profile:           controllers.NewProfileController(a.accounts, a.trips),
		Trips:             controllers.NewTripController(a.trips),
		Upload:            controllers.NewUploadController(a.uploads),
		Tokens:            a.tokens,
		Metrics:           a.metrics,
		Log:               log,
		CORSOrigins:       cfg.CORSOrigins,
		ProtectedPrefixes: cfg.ProtectedPrefixes,
		LoginPath:         cfg.LoginPath,
		AuthRateLimit:     cfg.AuthRateLimit,
		UploadDir:         uploadDir,
		UploadURLPrefix:   cfg.UploadURLPrefix,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info("shutdown signal received, shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
