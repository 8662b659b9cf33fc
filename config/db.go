package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travel-admin/models"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	// DriverMemory keeps everything in process; handy for local runs and demos.
	DriverMemory = "memory"
)

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	port := u.Port()
	if port == "" {
		port = "3306"
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	mc := gomysql.NewConfig()
	mc.User = u.User.Username()
	mc.Passwd, _ = u.User.Password()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(u.Hostname(), port)
	mc.DBName = dbName
	mc.ParseTime = true
	mc.Loc = time.Local

	params := map[string]string{"charset": "utf8mb4"}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	mc.Params = params
	return mc.FormatDSN(), nil
}

func resolveMySQLDSN(c DBConfig) (string, error) {
	if c.URL != "" {
		if strings.HasPrefix(c.URL, "mysql://") {
			return mysqlDSNFromURL(c.URL)
		}
		return c.URL, nil
	}

	mc := gomysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Pass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN(), nil
}

func resolvePostgresDSN(c DBConfig) string {
	if c.URL != "" {
		return c.URL
	}
	port := c.Port
	if port == "" || port == "3306" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, port, c.User, c.Pass, c.Name)
}

// Dialector picks the gorm driver for c.Driver.
func Dialector(c DBConfig) (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL:
		dsn, err := resolveMySQLDSN(c)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(resolvePostgresDSN(c)), nil
	default:
		return nil, fmt.Errorf("no sql dialector for DB_DRIVER %q", c.Driver)
	}
}

// ConnectDatabase opens the configured database and migrates the schema.
func ConnectDatabase(c DBConfig) (*gorm.DB, error) {
	dialector, err := Dialector(c)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if c.LogSQL {
		level = logger.Info
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}

	if err := db.AutoMigrate(&models.Admin{}, &models.Trip{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
