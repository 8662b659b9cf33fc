package repo

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"travel-admin/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// AdminFields is a partial update; nil pointers and unchanged patches are
// left alone. All set fields are written in a single statement.
type AdminFields struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Image        models.Patch[string]
}

func (f AdminFields) empty() bool {
	return f.Name == nil && f.Email == nil && f.PasswordHash == nil && !f.Image.Present()
}

type AdminStore interface {
	FindByID(ctx context.Context, id uint) (*models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	Update(ctx context.Context, id uint, fields AdminFields) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

type TripFields struct {
	Title       *string
	TourType    *string
	Includes    *string
	Notes       models.Patch[string]
	Places      *[]string
	Description models.Patch[string]
	Images      *[]string
}

type TripStore interface {
	// List returns trips newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]models.Trip, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Trip, error)
	Create(ctx context.Context, trip *models.Trip) error
	Update(ctx context.Context, id uint, fields TripFields) (*models.Trip, error)
	Delete(ctx context.Context, id uint) error
}

const mysqlDuplicateEntry = 1062

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateEmail
	}
	return err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
