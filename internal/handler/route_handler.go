package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/andreee-ff/saferide-go/internal/middleware"
	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/service"
	"github.com/andreee-ff/saferide-go/pkg/response"
)

// RouteHandler handles HTTP requests for planned route management
type RouteHandler struct {
	routes *service.RouteService
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routes *service.RouteService) *RouteHandler {
	return &RouteHandler{routes: routes}
}

// Create handles POST /api/routes
func (h *RouteHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var create models.RouteCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		response.BadRequest(c, "Invalid route payload", err)
		return
	}

	route, err := h.routes.Create(user.ID, create)
	if err != nil {
		response.InternalError(c, "Failed to create route", err)
		return
	}
	response.Created(c, route)
}

// List handles GET /api/routes
func (h *RouteHandler) List(c *gin.Context) {
	routes, err := h.routes.List()
	if err != nil {
		response.InternalError(c, "Failed to list routes", err)
		return
	}
	response.Success(c, routes)
}

// Get handles GET /api/routes/:id
func (h *RouteHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	route, err := h.routes.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "Route not found")
			return
		}
		response.InternalError(c, "Failed to get route", err)
		return
	}
	response.Success(c, route)
}

// Update handles PUT /api/routes/:id
func (h *RouteHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var update models.RouteUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, "Invalid route payload", err)
		return
	}

	route, err := h.routes.Update(user.ID, id, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "Route not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "Only the route creator can update it")
		default:
			response.InternalError(c, "Failed to update route", err)
		}
		return
	}
	response.Success(c, route)
}

// Delete handles DELETE /api/routes/:id
func (h *RouteHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.routes.Delete(user.ID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "Route not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "Only the route creator can delete it")
		default:
			response.InternalError(c, "Failed to delete route", err)
		}
		return
	}
	response.Success(c, nil)
}
