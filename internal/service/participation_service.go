package service

import (
	"time"

	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/repository"
)

// ParticipationService handles business logic for ride membership and
// location writes
type ParticipationService struct {
	participations *repository.ParticipationRepository
	rides          *repository.RideRepository
}

// NewParticipationService creates a new participation service
func NewParticipationService(participations *repository.ParticipationRepository, rides *repository.RideRepository) *ParticipationService {
	return &ParticipationService{participations: participations, rides: rides}
}

// Join adds the user to the ride identified by its join code
func (s *ParticipationService) Join(userID int64, rideCode string) (*models.Participation, error) {
	ride, err := s.rides.GetByCode(rideCode)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, ErrNotFound
	}
	if !ride.IsActive {
		return nil, ErrRideInactive
	}

	existing, err := s.participations.GetByUserAndRide(userID, ride.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyJoined
	}

	return s.participations.Create(userID, ride.ID)
}

// Leave removes the user's participation. The organizer cannot leave their
// own ride; they delete it instead.
func (s *ParticipationService) Leave(userID, participationID int64) error {
	participation, err := s.participations.GetByID(participationID)
	if err != nil {
		return err
	}
	if participation == nil {
		return ErrNotFound
	}
	if participation.UserID != userID {
		return ErrForbidden
	}

	ride, err := s.rides.GetByID(participation.RideID)
	if err != nil {
		return err
	}
	if ride != nil && ride.CreatedByUserID == userID {
		return ErrOrganizerCantLeave
	}

	return s.participations.Delete(participationID)
}

// ListMine retrieves the user's participation records
func (s *ParticipationService) ListMine(userID int64) ([]models.Participation, error) {
	return s.participations.ListByUser(userID)
}

// Participants returns the ordered participant snapshot for a ride,
// organizer first
func (s *ParticipationService) Participants(rideID int64) ([]models.Participant, error) {
	ride, err := s.rides.GetByID(rideID)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, ErrNotFound
	}
	return s.participations.ListParticipants(rideID, ride.CreatedByUserID)
}

// UpdateLocation persists a position write on the caller's own
// participation record
func (s *ParticipationService) UpdateLocation(userID, participationID int64, lat, lon float64, observedAt time.Time) (*models.Participation, error) {
	participation, err := s.participations.GetByID(participationID)
	if err != nil {
		return nil, err
	}
	if participation == nil {
		return nil, ErrNotFound
	}
	if participation.UserID != userID {
		return nil, ErrForbidden
	}

	return s.participations.UpdateLocation(participationID, lat, lon, observedAt)
}
