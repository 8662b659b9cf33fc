package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"travel-admin/auth"
	"travel-admin/mailer"
)

// Config is everything the server reads from the environment. It is loaded
// once at startup and passed to constructors explicitly.
type Config struct {
	Env    string
	Port   string
	AppURL string

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
	ResetTTL   time.Duration
	BcryptCost int

	DB DBConfig

	SMTP mailer.SMTPConfig

	UploadDir       string
	UploadURLPrefix string
	UploadMaxBytes  int64
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	S3PublicURL     string

	CORSOrigins       []string
	ProtectedPrefixes []string
	LoginPath         string
	AuthRateLimit     int

	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string
}

type DBConfig struct {
	Driver  string
	URL     string
	Host    string
	Port    string
	User    string
	Pass    string
	Name    string
	Timeout time.Duration
	LogSQL  bool
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// TokenConfig derives the token service settings.
func (c Config) TokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:       c.JWTSecret,
		Issuer:       c.JWTIssuer,
		SessionTTL:   c.SessionTTL,
		ResetTTL:     c.ResetTTL,
		StrictSecret: c.IsProduction(),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_URL", "http://localhost:3000")

	v.SetDefault("JWT_ISSUER", "travel-admin")
	v.SetDefault("SESSION_TTL", auth.DefaultSessionTTL)
	v.SetDefault("RESET_TTL", auth.DefaultResetTTL)
	v.SetDefault("BCRYPT_COST", auth.DefaultBcryptCost)

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_NAME", "travel_admin")
	v.SetDefault("DB_TIMEOUT", 5*time.Second)
	v.SetDefault("DB_LOG_SQL", false)

	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_FROM_NAME", "The Kind Travel")

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	v.SetDefault("S3_PREFIX", "uploads")

	v.SetDefault("PROTECTED_PREFIXES", "/dashboard")
	v.SetDefault("LOGIN_PATH", "/login")
	v.SetDefault("AUTH_RATE_LIMIT_PER_MIN", 20)

	v.SetDefault("SEED_ADMIN_NAME", "Admin")
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded; using process environment", "error", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

func FromViper(v *viper.Viper) *Config {
	dbURL := strings.TrimSpace(v.GetString("MYSQL_URL"))
	if dbURL == "" {
		dbURL = strings.TrimSpace(v.GetString("DATABASE_URL"))
	}

	cfg := &Config{
		Env:    strings.TrimSpace(v.GetString("APP_ENV")),
		Port:   strings.TrimSpace(v.GetString("PORT")),
		AppURL: strings.TrimRight(strings.TrimSpace(v.GetString("APP_URL")), "/"),

		JWTSecret:  v.GetString("JWT_SECRET"),
		JWTIssuer:  v.GetString("JWT_ISSUER"),
		SessionTTL: v.GetDuration("SESSION_TTL"),
		ResetTTL:   v.GetDuration("RESET_TTL"),
		BcryptCost: v.GetInt("BCRYPT_COST"),

		DB: DBConfig{
			Driver:  strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			URL:     dbURL,
			Host:    v.GetString("DB_HOST"),
			Port:    v.GetString("DB_PORT"),
			User:    v.GetString("DB_USER"),
			Pass:    v.GetString("DB_PASS"),
			Name:    v.GetString("DB_NAME"),
			Timeout: v.GetDuration("DB_TIMEOUT"),
			LogSQL:  v.GetBool("DB_LOG_SQL"),
		},

		SMTP: mailer.SMTPConfig{
			Host:     strings.TrimSpace(v.GetString("SMTP_HOST")),
			Port:     strings.TrimSpace(v.GetString("SMTP_PORT")),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     strings.TrimSpace(v.GetString("SMTP_FROM")),
			FromName: v.GetString("SMTP_FROM_NAME"),
		},

		UploadDir:       v.GetString("UPLOAD_DIR"),
		UploadURLPrefix: v.GetString("UPLOAD_URL_PREFIX"),
		UploadMaxBytes:  v.GetInt64("UPLOAD_MAX_BYTES"),
		S3Bucket:        strings.TrimSpace(v.GetString("S3_BUCKET")),
		S3Region:        strings.TrimSpace(v.GetString("S3_REGION")),
		S3Prefix:        v.GetString("S3_PREFIX"),
		S3PublicURL:     strings.TrimSpace(v.GetString("S3_PUBLIC_URL")),

		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		ProtectedPrefixes: splitList(v.GetString("PROTECTED_PREFIXES")),
		LoginPath:         v.GetString("LOGIN_PATH"),
		AuthRateLimit:     v.GetInt("AUTH_RATE_LIMIT_PER_MIN"),

		SeedAdminEmail:    strings.TrimSpace(v.GetString("SEED_ADMIN_EMAIL")),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
		SeedAdminName:     v.GetString("SEED_ADMIN_NAME"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return cfg
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate runs the startup checks. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, auth.ErrMissingSecret)
	} else if c.IsProduction() && len(c.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, auth.ErrWeakSecret)
	}

	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver))
	}

	if c.IsProduction() && !c.SMTP.Configured() {
		errs = append(errs, errors.New("SMTP settings are required in production"))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	// zero turns auth rate limiting off
	if c.AuthRateLimit < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT_PER_MIN must not be negative"))
	}
	if (c.SeedAdminEmail == "") != (c.SeedAdminPassword == "") {
		errs = append(errs, errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together"))
	}

	return errors.Join(errs...)
}
