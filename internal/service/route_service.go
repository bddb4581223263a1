package service

import (
	"github.com/andreee-ff/saferide-go/internal/gpx"
	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/repository"
)

// RouteService handles business logic for stored routes
type RouteService struct {
	routes *repository.RouteRepository
}

// NewRouteService creates a new route service
func NewRouteService(routes *repository.RouteRepository) *RouteService {
	return &RouteService{routes: routes}
}

// Create stores a route; the total distance is computed from its GPX track.
// A malformed track yields distance zero, not an error.
func (s *RouteService) Create(userID int64, create models.RouteCreate) (*models.Route, error) {
	route := &models.Route{
		Title:           create.Title,
		Description:     create.Description,
		GPXData:         create.GPXData,
		DistanceMeters:  gpx.Distance([]byte(create.GPXData)),
		CreatedByUserID: userID,
	}
	return s.routes.Create(route)
}

// GetByID retrieves a route by ID
func (s *RouteService) GetByID(id int64) (*models.Route, error) {
	route, err := s.routes.GetByID(id)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrNotFound
	}
	return route, nil
}

// List retrieves all routes
func (s *RouteService) List() ([]models.Route, error) {
	return s.routes.List()
}

// Update applies a partial update; only the route's creator may update it.
// A changed GPX track recomputes the distance.
func (s *RouteService) Update(userID, routeID int64, update models.RouteUpdate) (*models.Route, error) {
	route, err := s.GetByID(routeID)
	if err != nil {
		return nil, err
	}
	if route.CreatedByUserID != userID {
		return nil, ErrForbidden
	}

	if update.Title != nil {
		route.Title = *update.Title
	}
	if update.Description != nil {
		route.Description = *update.Description
	}
	if update.GPXData != nil {
		route.GPXData = *update.GPXData
		route.DistanceMeters = gpx.Distance([]byte(route.GPXData))
	}

	if err := s.routes.Update(route); err != nil {
		return nil, err
	}
	return route, nil
}

// Delete removes a route; only the route's creator may delete it
func (s *RouteService) Delete(userID, routeID int64) error {
	route, err := s.GetByID(routeID)
	if err != nil {
		return err
	}
	if route.CreatedByUserID != userID {
		return ErrForbidden
	}
	return s.routes.Delete(routeID)
}
