package api

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreee-ff/saferide-go/internal/client"
	"github.com/andreee-ff/saferide-go/internal/database"
	"github.com/andreee-ff/saferide-go/internal/handler"
	"github.com/andreee-ff/saferide-go/internal/hub"
	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/repository"
	"github.com/andreee-ff/saferide-go/internal/service"
)

func startAPI(t *testing.T) (*client.Client, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	rides := repository.NewRideRepository(db)
	routes := repository.NewRouteRepository(db)
	participations := repository.NewParticipationRepository(db)

	authService := service.NewAuthService(users, "test-secret-test-secret")
	rideService := service.NewRideService(rides, participations)
	routeService := service.NewRouteService(routes)
	participationService := service.NewParticipationService(participations, rides)

	h := hub.NewHub()
	go h.Run()

	router := SetupRouter(Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Rides:          handler.NewRideHandler(rideService),
		Routes:         handler.NewRouteHandler(routeService),
		Participations: handler.NewParticipationHandler(participationService),
		AuthService:    authService,
		Hub:            h,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return client.New(srv.URL), srv.URL
}

func login(t *testing.T, c *client.Client, username string) *models.User {
	t.Helper()
	ctx := context.Background()
	user, err := c.Register(ctx, models.UserCreate{Username: username, Password: "hunter22"})
	require.NoError(t, err)
	_, err = c.Login(ctx, username, "hunter22")
	require.NoError(t, err)
	return user
}

func TestFullRideLifecycle(t *testing.T) {
	organizer, baseURL := startAPI(t)
	ctx := context.Background()

	alice := login(t, organizer, "alice")

	ride, err := organizer.CreateRide(ctx, models.RideCreate{
		Title:     "Sunday loop",
		StartTime: time.Now().Add(time.Hour).UTC(),
	})
	require.NoError(t, err)
	require.Len(t, ride.Code, 8)

	// A second authenticated client joins by code.
	member := client.New(baseURL)
	bob := login(t, member, "bob")
	joined, err := member.JoinRide(ctx, ride.Code)
	require.NoError(t, err)
	assert.Equal(t, ride.ID, joined.RideID)

	participants, err := organizer.RideParticipants(ctx, ride.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, alice.ID, participants[0].UserID)
	assert.Equal(t, models.RoleOrganizer, participants[0].Role)
	assert.Equal(t, bob.ID, participants[1].UserID)

	// Location write through the REST surface round-trips.
	observed := time.Now().UTC().Truncate(time.Second)
	updated, err := member.UpdateLocation(ctx, joined.ID, models.ParticipationUpdate{
		Latitude: 52.37, Longitude: 4.90, LocationTimestamp: observed,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Latitude)
	assert.Equal(t, 52.37, *updated.Latitude)

	// Only the owner may write that participation.
	_, err = organizer.UpdateLocation(ctx, joined.ID, models.ParticipationUpdate{
		Latitude: 1, Longitude: 1, LocationTimestamp: observed,
	})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	c, _ := startAPI(t)
	_, err := c.Rides(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestParticipantsOfUnknownRideIsEmptyNotError(t *testing.T) {
	c, _ := startAPI(t)
	login(t, c, "alice")

	// 404 from the participants route means an empty roster to the client.
	participants, err := c.RideParticipants(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, participants)
}

func TestJoinByCodeAndLeave(t *testing.T) {
	c, _ := startAPI(t)
	ctx := context.Background()

	login(t, c, "alice")
	ride, err := c.CreateRide(ctx, models.RideCreate{
		Title:     "Evening spin",
		StartTime: time.Now().Add(time.Hour).UTC(),
	})
	require.NoError(t, err)

	// Same user joining again conflicts.
	_, err = c.JoinRide(ctx, ride.Code)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)

	// The organizer cannot leave their own ride.
	mine, err := c.MyParticipations(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	err = c.Leave(ctx, mine[0].ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestInvalidTokenRejected(t *testing.T) {
	c, _ := startAPI(t)
	c.SetToken("garbage.token.here")
	_, err := c.Me(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}
