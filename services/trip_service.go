package services

import (
	"context"
	"errors"
	"fmt"

	"travel-admin/models"
	"travel-admin/repo"
	"travel-admin/utils"
	"travel-admin/validators"
)

const MsgTripNotFound = "Trip not found"

type TripService struct {
	trips repo.TripStore
}

func NewTripService(trips repo.TripStore) *TripService {
	return &TripService{trips: trips}
}

func notFoundTrip(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return utils.NotFound(MsgTripNotFound)
	}
	return err
}

func (s *TripService) List(ctx context.Context) ([]models.Trip, error) {
	trips, err := s.trips.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

func (s *TripService) Get(ctx context.Context, id uint) (*models.Trip, error) {
	trip, err := s.trips.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundTrip(err)
	}
	return trip, nil
}

func (s *TripService) Create(ctx context.Context, req validators.CreateTripRequest) (*models.Trip, error) {
	if err := req.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}
	trip := req.ToTrip()
	if err := s.trips.Create(ctx, &trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	return &trip, nil
}

func (s *TripService) Update(ctx context.Context, id uint, req validators.UpdateTripRequest) (*models.Trip, error) {
	if err := req.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}

	var fields repo.TripFields
	if v, ok := req.Title.Get(); ok {
		fields.Title = &v
	}
	if v, ok := req.TourType.Get(); ok {
		fields.TourType = &v
	}
	if v, ok := req.Includes.Get(); ok {
		fields.Includes = &v
	}
	if v, ok := req.Places.Get(); ok {
		fields.Places = &v
	}
	if v, ok := req.Images.Get(); ok {
		fields.Images = &v
	}
	fields.Notes = req.Notes
	fields.Description = req.Description

	trip, err := s.trips.Update(ctx, id, fields)
	if err != nil {
		return nil, notFoundTrip(err)
	}
	return trip, nil
}

func (s *TripService) Delete(ctx context.Context, id uint) error {
	return notFoundTrip(s.trips.Delete(ctx, id))
}

// ----------------------------------------------------
// Dashboard summary
// ----------------------------------------------------

const recentTripsLimit = 5

type DashboardSummary struct {
	TripCount   int64         `json:"tripCount"`
	RecentTrips []models.Trip `json:"recentTrips"`
}

func (s *TripService) Summary(ctx context.Context) (*DashboardSummary, error) {
	count, err := s.trips.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count trips: %w", err)
	}
	recent, err := s.trips.List(ctx, recentTripsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent trips: %w", err)
	}
	return &DashboardSummary{TripCount: count, RecentTrips: recent}, nil
}
