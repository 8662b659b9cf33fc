package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"travel-admin/models"
)

type GormAdminStore struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewGormAdminStore(db *gorm.DB, timeout time.Duration) *GormAdminStore {
	return &GormAdminStore{DB: db, Timeout: timeout}
}

func (s *GormAdminStore) FindByID(ctx context.Context, id uint) (*models.Admin, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var admin models.Admin
	if err := s.DB.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (s *GormAdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var admin models.Admin
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (s *GormAdminStore) Create(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	if err := s.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update writes every set field in one UPDATE statement and returns the
// row as stored afterwards.
func (s *GormAdminStore) Update(ctx context.Context, id uint, fields AdminFields) (*models.Admin, error) {
	if fields.empty() {
		return s.FindByID(ctx, id)
	}

	updates := map[string]any{}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Email != nil {
		updates["email"] = *fields.Email
	}
	if fields.PasswordHash != nil {
		updates["password_hash"] = *fields.PasswordHash
	}
	switch fields.Image.State {
	case models.PatchClear:
		updates["image"] = nil
	case models.PatchSet:
		updates["image"] = fields.Image.Value
	}

	tctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.DB.WithContext(tctx).Model(&models.Admin{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update admin %d: %w", id, translate(err))
	}
	return s.FindByID(ctx, id)
}

func (s *GormAdminStore) List(ctx context.Context) ([]models.Admin, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var admins []models.Admin
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (s *GormAdminStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Admin{}).Count(&n).Error
	return n, err
}
