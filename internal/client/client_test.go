package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreee-ff/saferide-go/internal/models"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
	})
}

func TestLoginInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "alice", r.PostFormValue("username"))
		require.Equal(t, "secret", r.PostFormValue("password"))
		writeEnvelope(w, 200, models.TokenResponse{AccessToken: "tok123", TokenType: "bearer"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	token, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token.AccessToken)
	assert.Equal(t, "tok123", c.token)
}

func TestBearerTokenSentOnRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		writeEnvelope(w, 200, models.User{ID: 1, Username: "alice"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok123")
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestRideParticipantsEmptyRosterIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/rides/7/participants", r.URL.Path)
		writeError(w, 404, "No participants found")
	}))
	defer srv.Close()

	c := New(srv.URL)
	participants, err := c.RideParticipants(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, participants)
}

func TestRideParticipantsDecodesRoster(t *testing.T) {
	lat := 52.37
	lon := 4.90
	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, []models.Participant{
			{ID: 11, UserID: 1, Username: "alice", Role: models.RoleOrganizer, Latitude: &lat, Longitude: &lon, LocationTimestamp: &now},
			{ID: 12, UserID: 2, Username: "bob", Role: models.RoleMember},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	participants, err := c.RideParticipants(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.True(t, participants[0].HasPosition())
	assert.False(t, participants[1].HasPosition())
}

func TestErrorStatusYieldsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, 403, "Only the ride creator can update it")
	}))
	defer srv.Close()

	c := New(srv.URL)
	title := "new"
	_, err := c.UpdateRide(context.Background(), 7, models.RideUpdate{Title: &title})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	assert.Contains(t, apiErr.Detail, "creator")
}

func TestJoinRideSendsCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/participations", r.URL.Path)
		var create models.ParticipationCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&create))
		require.Equal(t, "ABCD1234", create.RideCode)
		writeEnvelope(w, 201, models.Participation{ID: 11, UserID: 2, RideID: 7})
	}))
	defer srv.Close()

	c := New(srv.URL)
	p, err := c.JoinRide(context.Background(), "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.RideID)
}

func TestContextCancellationAbortsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(srv.URL)
	_, err := c.Rides(ctx)
	require.Error(t, err)
}
