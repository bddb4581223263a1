package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/andreee-ff/saferide-go/internal/middleware"
	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/service"
	"github.com/andreee-ff/saferide-go/pkg/response"
)

// RideHandler handles HTTP requests for ride management
type RideHandler struct {
	rides *service.RideService
}

// NewRideHandler creates a new ride handler
func NewRideHandler(rides *service.RideService) *RideHandler {
	return &RideHandler{rides: rides}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

// Create handles POST /api/rides
func (h *RideHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var create models.RideCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		response.BadRequest(c, "Invalid ride payload", err)
		return
	}

	ride, err := h.rides.Create(user.ID, create)
	if err != nil {
		response.InternalError(c, "Failed to create ride", err)
		return
	}
	response.Created(c, ride)
}

// List handles GET /api/rides
func (h *RideHandler) List(c *gin.Context) {
	rides, err := h.rides.List()
	if err != nil {
		response.InternalError(c, "Failed to list rides", err)
		return
	}
	response.Success(c, rides)
}

// ListOwned handles GET /api/rides/owned
func (h *RideHandler) ListOwned(c *gin.Context) {
	user := middleware.CurrentUser(c)
	rides, err := h.rides.ListOwned(user.ID)
	if err != nil {
		response.InternalError(c, "Failed to list owned rides", err)
		return
	}
	response.Success(c, rides)
}

// ListJoined handles GET /api/rides/joined
func (h *RideHandler) ListJoined(c *gin.Context) {
	user := middleware.CurrentUser(c)
	rides, err := h.rides.ListJoined(user.ID)
	if err != nil {
		response.InternalError(c, "Failed to list joined rides", err)
		return
	}
	response.Success(c, rides)
}

// ListAvailable handles GET /api/rides/available
func (h *RideHandler) ListAvailable(c *gin.Context) {
	user := middleware.CurrentUser(c)
	rides, err := h.rides.ListAvailable(user.ID)
	if err != nil {
		response.InternalError(c, "Failed to list available rides", err)
		return
	}
	response.Success(c, rides)
}

// Get handles GET /api/rides/:id
func (h *RideHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ride, err := h.rides.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "Ride not found")
			return
		}
		response.InternalError(c, "Failed to get ride", err)
		return
	}
	response.Success(c, ride)
}

// GetByCode handles GET /api/rides/code/:code
func (h *RideHandler) GetByCode(c *gin.Context) {
	ride, err := h.rides.GetByCode(c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "Ride not found")
			return
		}
		response.InternalError(c, "Failed to get ride", err)
		return
	}
	response.Success(c, ride)
}

// Update handles PUT /api/rides/:id
func (h *RideHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var update models.RideUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, "Invalid ride payload", err)
		return
	}

	ride, err := h.rides.Update(user.ID, id, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "Ride not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "Only the ride creator can update it")
		default:
			response.InternalError(c, "Failed to update ride", err)
		}
		return
	}
	response.Success(c, ride)
}

// Delete handles DELETE /api/rides/:id
func (h *RideHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.rides.Delete(user.ID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "Ride not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "Only the ride creator can delete it")
		default:
			response.InternalError(c, "Failed to delete ride", err)
		}
		return
	}
	response.Success(c, nil)
}
