package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andreee-ff/saferide-go/internal/client"
	"github.com/andreee-ff/saferide-go/internal/gpx"
	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/realtime"
	"github.com/andreee-ff/saferide-go/internal/roster"
	"github.com/andreee-ff/saferide-go/internal/spatial"
	"github.com/andreee-ff/saferide-go/internal/viewport"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <ride-id>",
		Short: "Follow a ride's live roster",
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

			ride, me, route, err := loadRideView(ctx, c, rideID)
			if err != nil {
				return err
			}

			ch := realtime.Dial(ctx, wsURL)
			r := roster.Open(ctx, roster.Config{
				Ride:          *ride,
				CurrentUserID: me.ID,
				API:           c,
				Stream:        ch,
			})
			defer r.Close()

			controller := viewport.NewController()
			renderer := newTermRenderer(os.Stdout)

			fmt.Printf("Watching ride %d (%s), Ctrl-C to stop\n", ride.ID, ride.Title)
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-r.Errors():
					fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				case <-r.Changes():
					if !r.Ready() {
						continue
					}
					participants := r.Participants()
					printRoster(os.Stdout, participants, me.ID)
					controller.Apply(viewport.View{
						Participants:  participants,
						CurrentUserID: me.ID,
						Route:         route,
					}, renderer)
				}
			}
		},
	}
}

// loadRideView fetches the ride, the current user, and the planned route's
// track points when the ride has one the viewer may see.
func loadRideView(ctx context.Context, c *client.Client, rideID int64) (*models.Ride, *models.User, []spatial.Point, error) {
	ride, err := c.Ride(ctx, rideID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch ride %d: %w", rideID, err)
	}
	me, err := c.Me(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch current user: %w", err)
	}

	var track []spatial.Point
	if ride.RouteID != nil && ride.Visibility != models.VisibilitySecret {
		route, err := c.Route(ctx, *ride.RouteID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: route %d unavailable: %v\n", *ride.RouteID, err)
		} else {
			track = gpx.Parse([]byte(route.GPXData))
		}
	}
	return ride, me, track, nil
}

func printRoster(out *os.File, participants []models.Participant, currentUserID int64) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tROLE\tPOSITION\tOBSERVED")
	for _, p := range participants {
		marker := ""
		if p.UserID == currentUserID {
			marker = " (you)"
		}
		if p.HasPosition() {
			fmt.Fprintf(w, "%s%s\t%s\t%.5f,%.5f\t%s\n",
				p.Username, marker, p.Role, *p.Latitude, *p.Longitude,
				p.LocationTimestamp.Format("15:04:05"))
		} else {
			fmt.Fprintf(w, "%s%s\t%s\t-\t-\n", p.Username, marker, p.Role)
		}
	}
	w.Flush()
}
