package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"travel-admin/models"
)

type GormTripStore struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewGormTripStore(db *gorm.DB, timeout time.Duration) *GormTripStore {
	return &GormTripStore{DB: db, Timeout: timeout}
}

func (s *GormTripStore) List(ctx context.Context, limit int) ([]models.Trip, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	q := s.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var trips []models.Trip
	if err := q.Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (s *GormTripStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Trip{}).Count(&n).Error
	return n, err
}

func (s *GormTripStore) FindByID(ctx context.Context, id uint) (*models.Trip, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var trip models.Trip
	if err := s.DB.WithContext(ctx).First(&trip, id).Error; err != nil {
		return nil, translate(err)
	}
	return &trip, nil
}

func (s *GormTripStore) Create(ctx context.Context, trip *models.Trip) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	return s.DB.WithContext(ctx).Create(trip).Error
}

func (s *GormTripStore) Update(ctx context.Context, id uint, fields TripFields) (*models.Trip, error) {
	// confirm existence first; MySQL reports zero affected rows for no-op updates
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if fields.Title != nil {
		updates["title"] = *fields.Title
	}
	if fields.TourType != nil {
		updates["tour_type"] = *fields.TourType
	}
	if fields.Includes != nil {
		updates["includes"] = *fields.Includes
	}
	if fields.Places != nil {
		updates["places"] = datatypes.JSONSlice[string](*fields.Places)
	}
	if fields.Images != nil {
		updates["images"] = datatypes.JSONSlice[string](*fields.Images)
	}
	patchColumn(updates, "notes", fields.Notes)
	patchColumn(updates, "description", fields.Description)

	if len(updates) > 0 {
		tctx, cancel := withTimeout(ctx, s.Timeout)
		defer cancel()
		if err := s.DB.WithContext(tctx).Model(&models.Trip{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update trip %d: %w", id, err)
		}
	}
	return s.FindByID(ctx, id)
}

func (s *GormTripStore) Delete(ctx context.Context, id uint) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Trip{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func patchColumn(updates map[string]any, column string, p models.Patch[string]) {
	switch p.State {
	case models.PatchClear:
		updates[column] = nil
	case models.PatchSet:
		updates[column] = p.Value
	}
}
