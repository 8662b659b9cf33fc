package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"travel-admin/auth"
	"travel-admin/config"
	"travel-admin/mailer"
	"travel-admin/metrics"
	"travel-admin/repo"
	"travel-admin/services"
	"travel-admin/storage"
)

// app holds the wired services shared by the serve and admin commands.
type app struct {
	metrics  *metrics.Metrics
	tokens   *auth.TokenService
	accounts *services.AccountService
	trips    *services.TripService
	uploads  *services.UploadService
	close    func() error
}

func openStores(cfg *config.Config, log *slog.Logger) (repo.AdminStore, repo.TripStore, func() error, error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return repo.NewMemoryAdminStore(), repo.NewMemoryTripStore(), func() error { return nil }, nil
	}

	db, err := config.ConnectDatabase(cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database handle: %w", err)
	}
	log.Info("database connected", "driver", cfg.DB.Driver)
	return repo.NewGormAdminStore(db, cfg.DB.Timeout), repo.NewGormTripStore(db, cfg.DB.Timeout), sqlDB.Close, nil
}

func newMailer(cfg *config.Config, log *slog.Logger) mailer.Mailer {
	if cfg.SMTP.Configured() {
		log.Info("smtp mailer enabled", "host", cfg.SMTP.Host)
		return mailer.NewSMTPMailer(cfg.SMTP)
	}
	log.Warn("SMTP not configured; emails are logged instead of sent")
	return mailer.LogMailer{Log: log}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	if cfg.S3Bucket != "" {
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix), nil
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	tokens, err := auth.NewTokenService(cfg.TokenConfig())
	if err != nil {
		return nil, err
	}

	admins, trips, closeDB, err := openStores(cfg, log)
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		closeDB()
		return nil, err
	}
	log.Info("upload storage ready", "backend", blobs.Backend())

	m := metrics.New()
	accounts := services.NewAccountService(services.AccountDeps{
		Admins:  admins,
		Tokens:  tokens,
		Hasher:  auth.NewPasswordHasher(cfg.BcryptCost),
		Mailer:  newMailer(cfg, log),
		Metrics: m,
		AppURL:  cfg.AppURL,
		Log:     log,
	})
	return &app{
		metrics:  m,
		tokens:   tokens,
		accounts: accounts,
		trips:    services.NewTripService(trips),
		uploads:  services.NewUploadService(blobs, cfg.UploadMaxBytes, m, log),
		close:    closeDB,
	}, nil
}
