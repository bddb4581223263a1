package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andreee-ff/saferide-go/internal/middleware"
	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/service"
	"github.com/andreee-ff/saferide-go/pkg/response"
)

// ParticipationHandler handles HTTP requests for ride membership and
// location reporting
type ParticipationHandler struct {
	participations *service.ParticipationService
}

// NewParticipationHandler creates a new participation handler
func NewParticipationHandler(participations *service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participations: participations}
}

// Join handles POST /api/participations
func (h *ParticipationHandler) Join(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var create models.ParticipationCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		response.BadRequest(c, "Invalid participation payload", err)
		return
	}

	participation, err := h.participations.Join(user.ID, create.RideCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "Ride not found")
		case errors.Is(err, service.ErrRideInactive):
			response.BadRequest(c, "Ride is not active", nil)
		case errors.Is(err, service.ErrAlreadyJoined):
			response.Conflict(c, "Already joined this ride")
		default:
			response.InternalError(c, "Failed to join ride", err)
		}
		return
	}
	response.Created(c, participation)
}

// ListMine handles GET /api/participations
func (h *ParticipationHandler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	participations, err := h.participations.ListMine(user.ID)
	if err != nil {
		response.InternalError(c, "Failed to list participations", err)
		return
	}
	response.Success(c, participations)
}

// Participants handles GET /api/rides/:id/participants. An empty
// roster yields 404, which clients treat as an empty snapshot.
func (h *ParticipationHandler) Participants(c *gin.Context) {
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	participants, err := h.participations.Participants(rideID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "Ride not found")
			return
		}
		response.InternalError(c, "Failed to list participants", err)
		return
	}
	if len(participants) == 0 {
		response.NotFound(c, "No participants found")
		return
	}
	response.Success(c, participants)
}

// UpdateLocation handles PUT /api/participations/:id
func (h *ParticipationHandler) UpdateLocation(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var update models.ParticipationUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, "Invalid location payload", err)
		return
	}
	observedAt := update.LocationTimestamp
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	participation, err := h.participations.UpdateLocation(user.ID, id, update.Latitude, update.Longitude, observedAt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "Participation not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "Cannot update another rider's location")
		default:
			response.InternalError(c, "Failed to update location", err)
		}
		return
	}
	response.Success(c, participation)
}

// Leave handles DELETE /api/participations/:id
func (h *ParticipationHandler) Leave(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.participations.Leave(user.ID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "Participation not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "Cannot remove another rider's participation")
		case errors.Is(err, service.ErrOrganizerCantLeave):
			response.BadRequest(c, "The organizer cannot leave their own ride", nil)
		default:
			response.InternalError(c, "Failed to leave ride", err)
		}
		return
	}
	response.Success(c, nil)
}
