package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"

	"travel-admin/models"
)

// MemoryAdminStore keeps admins in process memory. Used with
// DB_DRIVER=memory and by tests.
type MemoryAdminStore struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]models.Admin
	now    func() time.Time
}

func NewMemoryAdminStore() *MemoryAdminStore {
	return &MemoryAdminStore{nextID: 1, byID: map[uint]models.Admin{}, now: time.Now}
}

func (s *MemoryAdminStore) FindByID(_ context.Context, id uint) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAdmin(admin), nil
}

func (s *MemoryAdminStore) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if admin, ok := s.lookupEmail(email); ok {
		return cloneAdmin(admin), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryAdminStore) lookupEmail(email string) (models.Admin, bool) {
	for _, admin := range s.byID {
		if strings.EqualFold(admin.Email, email) {
			return admin, true
		}
	}
	return models.Admin{}, false
}

func (s *MemoryAdminStore) Create(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.lookupEmail(admin.Email); taken {
		return ErrDuplicateEmail
	}
	now := s.now()
	admin.ID = s.nextID
	admin.CreatedAt = now
	admin.UpdatedAt = now
	s.nextID++
	s.byID[admin.ID] = *cloneAdmin(*admin)
	return nil
}

func (s *MemoryAdminStore) Update(_ context.Context, id uint, fields AdminFields) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if fields.empty() {
		return cloneAdmin(admin), nil
	}
	if fields.Email != nil {
		if other, taken := s.lookupEmail(*fields.Email); taken && other.ID != id {
			return nil, ErrDuplicateEmail
		}
		admin.Email = *fields.Email
	}
	if fields.Name != nil {
		admin.Name = *fields.Name
	}
	if fields.PasswordHash != nil {
		admin.PasswordHash = *fields.PasswordHash
	}
	switch fields.Image.State {
	case models.PatchClear:
		admin.Image = nil
	case models.PatchSet:
		img := fields.Image.Value
		admin.Image = &img
	}
	admin.UpdatedAt = s.now()
	s.byID[id] = admin
	return cloneAdmin(admin), nil
}

func (s *MemoryAdminStore) List(_ context.Context) ([]models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Admin, 0, len(s.byID))
	for _, admin := range s.byID {
		out = append(out, *cloneAdmin(admin))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryAdminStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func cloneAdmin(a models.Admin) *models.Admin {
	if a.Image != nil {
		img := *a.Image
		a.Image = &img
	}
	return &a
}

type MemoryTripStore struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]models.Trip
	now    func() time.Time
}

func NewMemoryTripStore() *MemoryTripStore {
	return &MemoryTripStore{nextID: 1, byID: map[uint]models.Trip{}, now: time.Now}
}

func (s *MemoryTripStore) List(_ context.Context, limit int) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Trip, 0, len(s.byID))
	for _, trip := range s.byID {
		out = append(out, cloneTrip(trip))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryTripStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *MemoryTripStore) FindByID(_ context.Context, id uint) (*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trip, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneTrip(trip)
	return &out, nil
}

func (s *MemoryTripStore) Create(_ context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	trip.ID = s.nextID
	trip.CreatedAt = now
	trip.UpdatedAt = now
	s.nextID++
	s.byID[trip.ID] = cloneTrip(*trip)
	return nil
}

func (s *MemoryTripStore) Update(_ context.Context, id uint, fields TripFields) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if fields.Title != nil {
		trip.Title = *fields.Title
	}
	if fields.TourType != nil {
		trip.TourType = *fields.TourType
	}
	if fields.Includes != nil {
		trip.Includes = *fields.Includes
	}
	if fields.Places != nil {
		trip.Places = datatypes.JSONSlice[string](append([]string(nil), *fields.Places...))
	}
	if fields.Images != nil {
		trip.Images = datatypes.JSONSlice[string](append([]string(nil), *fields.Images...))
	}
	trip.Notes = applyPatch(trip.Notes, fields.Notes)
	trip.Description = applyPatch(trip.Description, fields.Description)
	trip.UpdatedAt = s.now()

	s.byID[id] = trip
	out := cloneTrip(trip)
	return &out, nil
}

func (s *MemoryTripStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func applyPatch(current *string, p models.Patch[string]) *string {
	switch p.State {
	case models.PatchClear:
		return nil
	case models.PatchSet:
		v := p.Value
		return &v
	}
	return current
}

func cloneTrip(t models.Trip) models.Trip {
	t.Places = append(datatypes.JSONSlice[string](nil), t.Places...)
	t.Images = append(datatypes.JSONSlice[string](nil), t.Images...)
	if t.Notes != nil {
		v := *t.Notes
		t.Notes = &v
	}
	if t.Description != nil {
		v := *t.Description
		t.Description = &v
	}
	return t
}
