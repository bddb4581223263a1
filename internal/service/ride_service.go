package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/repository"
)

// RideService handles business logic for rides
type RideService struct {
	rides          *repository.RideRepository
	participations *repository.ParticipationRepository
}

// NewRideService creates a new ride service
func NewRideService(rides *repository.RideRepository, participations *repository.ParticipationRepository) *RideService {
	return &RideService{rides: rides, participations: participations}
}

// newRideCode derives a short join code that is shared out of band
func newRideCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Create creates a ride owned by the given user, assigns its join code,
// and enrolls the creator as the organizer participant
func (s *RideService) Create(userID int64, create models.RideCreate) (*models.Ride, error) {
	visibility := create.Visibility
	if visibility == "" {
		visibility = models.VisibilityAlways
	}

	ride := &models.Ride{
		Code:            newRideCode(),
		Title:           create.Title,
		Description:     create.Description,
		StartTime:       create.StartTime,
		CreatedByUserID: userID,
		IsActive:        true,
		RouteID:         create.RouteID,
		Visibility:      visibility,
	}
	created, err := s.rides.Create(ride)
	if err != nil {
		return nil, err
	}
	if _, err := s.participations.Create(userID, created.ID); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a ride by ID
func (s *RideService) GetByID(id int64) (*models.Ride, error) {
	ride, err := s.rides.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, ErrNotFound
	}
	return ride, nil
}

// GetByCode retrieves a ride by its join code
func (s *RideService) GetByCode(code string) (*models.Ride, error) {
	ride, err := s.rides.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, ErrNotFound
	}
	return ride, nil
}

// List retrieves all rides
func (s *RideService) List() ([]models.Ride, error) {
	return s.rides.List()
}

// ListOwned retrieves rides created by the user
func (s *RideService) ListOwned(userID int64) ([]models.Ride, error) {
	return s.rides.ListOwned(userID)
}

// ListJoined retrieves rides the user participates in
func (s *RideService) ListJoined(userID int64) ([]models.Ride, error) {
	return s.rides.ListJoined(userID)
}

// ListAvailable retrieves active rides the user has not joined
func (s *RideService) ListAvailable(userID int64) ([]models.Ride, error) {
	return s.rides.ListAvailable(userID)
}

// Update applies a partial update; only the ride's creator may update it
func (s *RideService) Update(userID, rideID int64, update models.RideUpdate) (*models.Ride, error) {
	ride, err := s.GetByID(rideID)
	if err != nil {
		return nil, err
	}
	if ride.CreatedByUserID != userID {
		return nil, ErrForbidden
	}

	if update.Title != nil {
		ride.Title = *update.Title
	}
	if update.Description != nil {
		ride.Description = *update.Description
	}
	if update.StartTime != nil {
		ride.StartTime = *update.StartTime
	}
	if update.IsActive != nil {
		ride.IsActive = *update.IsActive
	}
	if update.RouteID != nil {
		ride.RouteID = update.RouteID
	}
	if update.Visibility != nil {
		ride.Visibility = *update.Visibility
	}

	if err := s.rides.Update(ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// Delete removes a ride; only the ride's creator may delete it
func (s *RideService) Delete(userID, rideID int64) error {
	ride, err := s.GetByID(rideID)
	if err != nil {
		return err
	}
	if ride.CreatedByUserID != userID {
		return ErrForbidden
	}
	return s.rides.Delete(rideID)
}
