package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andreee-ff/saferide-go/internal/client"
	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/realtime"
	"github.com/andreee-ff/saferide-go/internal/roster"
)

func trackCmd() *cobra.Command {
	var (
		simulate bool
		baseLat  float64
		baseLon  float64
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "track <ride-id>",
		Short: "Report your position on a ride",
		Long:  "Join the ride's roster and report your position every interval. Without --simulate the position is read from SAFERIDE_LAT/SAFERIDE_LON, for devices that export a fix externally.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rideID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid ride id %q", args[0])
			}

			c, err := newClient(true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ride, err := c.Ride(ctx, rideID)
			if err != nil {
				return fmt.Errorf("fetch ride %d: %w", rideID, err)
			}
			me, err := c.Me(ctx)
			if err != nil {
				return fmt.Errorf("fetch current user: %w", err)
			}
			if err := ensureJoined(ctx, c, ride); err != nil {
				return err
			}

			var source roster.PositionSource
			if simulate {
				source = newSimulatedSource(baseLat, baseLon)
			} else {
				source = envSource{}
			}

			ch := realtime.Dial(ctx, wsURL)
			r := roster.Open(ctx, roster.Config{
				Ride:          *ride,
				CurrentUserID: me.ID,
				API:           c,
				Stream:        ch,
			})
			defer r.Close()

			fmt.Printf("Tracking on ride %d (%s) every %s, Ctrl-C to stop\n", ride.ID, ride.Title, interval)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-r.Errors():
					fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				case <-ticker.C:
					if !r.Ready() {
						continue
					}
					if err := r.ReportFrom(ctx, source); err != nil {
						fmt.Fprintf(os.Stderr, "warning: %v\n", err)
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&simulate, "simulate", false, "generate a drifting position instead of reading a real fix")
	cmd.Flags().Float64Var(&baseLat, "lat", 52.3676, "starting latitude for --simulate")
	cmd.Flags().Float64Var(&baseLon, "lon", 4.9041, "starting longitude for --simulate")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "time between position reports")
	return cmd
}

// ensureJoined joins the ride when the user is not a member yet. Already
// being a member, including as the organizer, is not an error.
func ensureJoined(ctx context.Context, c *client.Client, ride *models.Ride) error {
	participations, err := c.MyParticipations(ctx)
	if err != nil {
		return fmt.Errorf("list participations: %w", err)
	}
	for _, p := range participations {
		if p.RideID == ride.ID {
			return nil
		}
	}
	if _, err := c.JoinRide(ctx, ride.Code); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 409 {
			return nil
		}
		return fmt.Errorf("join ride %s: %w", ride.Code, err)
	}
	return nil
}

// simulatedSource produces a plausible ride track: a random walk that
// drifts away from the base point in small steps.
type simulatedSource struct {
	lat, lon float64
	bearing  float64
	rng      *rand.Rand
}

func newSimulatedSource(lat, lon float64) *simulatedSource {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &simulatedSource{
		lat:     lat,
		lon:     lon,
		bearing: rng.Float64() * 360,
		rng:     rng,
	}
}

func (s *simulatedSource) Current(ctx context.Context) (float64, float64, time.Time, error) {
	// Roughly 10-30 meters per step, with a slowly wandering heading.
	s.bearing += (s.rng.Float64() - 0.5) * 30
	step := (0.0001 + s.rng.Float64()*0.0002)
	s.lat += step * cosDeg(s.bearing)
	s.lon += step * sinDeg(s.bearing)
	return s.lat, s.lon, time.Now().UTC(), nil
}

func cosDeg(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
func sinDeg(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }

// envSource reads a fix exported by an external process, e.g. gpsd glue.
type envSource struct{}

func (envSource) Current(ctx context.Context) (float64, float64, time.Time, error) {
	lat, err1 := strconv.ParseFloat(os.Getenv("SAFERIDE_LAT"), 64)
	lon, err2 := strconv.ParseFloat(os.Getenv("SAFERIDE_LON"), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, time.Time{}, errors.New("SAFERIDE_LAT/SAFERIDE_LON not set")
	}
	return lat, lon, time.Now().UTC(), nil
}
