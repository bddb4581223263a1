// Package client is the typed HTTP client for the SafeRide backend API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andreee-ff/saferide-go/internal/models"
)

// APIError carries the HTTP status and the server's detail message
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Detail)
}

// Client talks to one SafeRide backend. The zero token means
// unauthenticated; SetToken installs the bearer token after login.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for the given base URL, e.g. "http://localhost:8080"
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token used on subsequent requests
func (c *Client) SetToken(token string) {
	c.token = token
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("client: decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Detail: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Register creates a new user account
func (c *Client) Register(ctx context.Context, create models.UserCreate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/users", create, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token and installs it on the
// client. The request is form-encoded, matching the backend's login route.
func (c *Client) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var token models.TokenResponse
	if err := decode(resp, &token); err != nil {
		return nil, err
	}
	c.token = token.AccessToken
	return &token, nil
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Rides returns all rides visible to the caller
func (c *Client) Rides(ctx context.Context) ([]models.Ride, error) {
	var rides []models.Ride
	if err := c.do(ctx, http.MethodGet, "/api/rides", nil, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// Ride returns one ride by id
func (c *Client) Ride(ctx context.Context, id int64) (*models.Ride, error) {
	var ride models.Ride
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/rides/%d", id), nil, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// RideByCode returns one ride by its join code
func (c *Client) RideByCode(ctx context.Context, code string) (*models.Ride, error) {
	var ride models.Ride
	if err := c.do(ctx, http.MethodGet, "/api/rides/code/"+url.PathEscape(code), nil, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// CreateRide creates a new ride owned by the caller
func (c *Client) CreateRide(ctx context.Context, create models.RideCreate) (*models.Ride, error) {
	var ride models.Ride
	if err := c.do(ctx, http.MethodPost, "/api/rides", create, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// UpdateRide applies a partial update to a ride
func (c *Client) UpdateRide(ctx context.Context, id int64, update models.RideUpdate) (*models.Ride, error) {
	var ride models.Ride
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/rides/%d", id), update, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// DeleteRide removes a ride and its participations
func (c *Client) DeleteRide(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/rides/%d", id), nil, nil)
}

// OwnedRides returns rides created by the caller
func (c *Client) OwnedRides(ctx context.Context) ([]models.Ride, error) {
	var rides []models.Ride
	if err := c.do(ctx, http.MethodGet, "/api/rides/owned", nil, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// JoinedRides returns rides the caller participates in
func (c *Client) JoinedRides(ctx context.Context) ([]models.Ride, error) {
	var rides []models.Ride
	if err := c.do(ctx, http.MethodGet, "/api/rides/joined", nil, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// AvailableRides returns active rides the caller has not joined yet
func (c *Client) AvailableRides(ctx context.Context) ([]models.Ride, error) {
	var rides []models.Ride
	if err := c.do(ctx, http.MethodGet, "/api/rides/available", nil, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// RideParticipants fetches the participant snapshot for a ride. A 404 means
// the ride has no participations yet and yields an empty roster, not an
// error.
func (c *Client) RideParticipants(ctx context.Context, rideID int64) ([]models.Participant, error) {
	var participants []models.Participant
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/rides/%d/participants", rideID), nil, &participants)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return participants, nil
}

// MyParticipations returns the caller's participation records
func (c *Client) MyParticipations(ctx context.Context) ([]models.Participation, error) {
	var participations []models.Participation
	if err := c.do(ctx, http.MethodGet, "/api/participations", nil, &participations); err != nil {
		return nil, err
	}
	return participations, nil
}

// JoinRide joins a ride by its code
func (c *Client) JoinRide(ctx context.Context, rideCode string) (*models.Participation, error) {
	var participation models.Participation
	create := models.ParticipationCreate{RideCode: rideCode}
	if err := c.do(ctx, http.MethodPost, "/api/participations", create, &participation); err != nil {
		return nil, err
	}
	return &participation, nil
}

// UpdateLocation persists the caller's position on their participation
// record. Failures surface to the caller and are never retried here.
func (c *Client) UpdateLocation(ctx context.Context, participationID int64, update models.ParticipationUpdate) (*models.Participation, error) {
	var participation models.Participation
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/participations/%d", participationID), update, &participation); err != nil {
		return nil, err
	}
	return &participation, nil
}

// Leave removes the caller's participation
func (c *Client) Leave(ctx context.Context, participationID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/participations/%d", participationID), nil, nil)
}

// Routes returns all stored routes
func (c *Client) Routes(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	if err := c.do(ctx, http.MethodGet, "/api/routes", nil, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// Route returns one route by id
func (c *Client) Route(ctx context.Context, id int64) (*models.Route, error) {
	var route models.Route
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/routes/%d", id), nil, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// CreateRoute stores a new route; the backend computes its distance from
// the GPX track
func (c *Client) CreateRoute(ctx context.Context, create models.RouteCreate) (*models.Route, error) {
	var route models.Route
	if err := c.do(ctx, http.MethodPost, "/api/routes", create, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// UpdateRoute applies a partial update to a route
func (c *Client) UpdateRoute(ctx context.Context, id int64, update models.RouteUpdate) (*models.Route, error) {
	var route models.Route
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/routes/%d", id), update, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// DeleteRoute removes a route
func (c *Client) DeleteRoute(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/routes/%d", id), nil, nil)
}
