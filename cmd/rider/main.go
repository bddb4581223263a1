package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andreee-ff/saferide-go/internal/client"
	"github.com/andreee-ff/saferide-go/internal/models"
)

var (
	apiURL string
	wsURL  string
)

var rootCmd = &cobra.Command{
	Use:   "rider",
	Short: "SafeRide command line rider",
	Long:  "Track group rides from the terminal: log in, list rides, watch a live roster, and report your own position.",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "base URL of the SafeRide API")
	rootCmd.PersistentFlags().StringVar(&wsURL, "ws", "ws://localhost:8080/ws", "URL of the realtime websocket")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(ridesCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(trackCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".saferide-token"
	}
	return filepath.Join(home, ".saferide", "token")
}

func saveToken(token string) error {
	path := tokenPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func loadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// newClient builds an API client carrying the stored token. Commands that
// require authentication fail fast when no token is saved.
func newClient(requireAuth bool) (*client.Client, error) {
	c := client.New(apiURL)
	token, err := loadToken()
	if err != nil {
		if requireAuth {
			return nil, fmt.Errorf("not logged in, run 'rider login' first")
		}
		return c, nil
	}
	c.SetToken(token)
	return c, nil
}

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(false)
			if err != nil {
				return err
			}
			token, err := c.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := saveToken(token.AccessToken); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Printf("Logged in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func ridesCmd() *cobra.Command {
	var owned, joined, available bool

	cmd := &cobra.Command{
		Use:   "rides",
		Short: "List rides",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(true)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var (
				rides []models.Ride
				label string
			)
			switch {
			case owned:
				rides, err = c.OwnedRides(ctx)
				label = "owned"
			case joined:
				rides, err = c.JoinedRides(ctx)
				label = "joined"
			case available:
				rides, err = c.AvailableRides(ctx)
				label = "available"
			default:
				rides, err = c.Rides(ctx)
				label = "all"
			}
			if err != nil {
				return fmt.Errorf("list %s rides: %w", label, err)
			}
			if len(rides) == 0 {
				fmt.Println("No rides")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tTITLE\tACTIVE\tVISIBILITY")
			for _, ride := range rides {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", ride.ID, ride.Code, ride.Title, ride.IsActive, ride.Visibility)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&owned, "owned", false, "only rides you organize")
	cmd.Flags().BoolVar(&joined, "joined", false, "only rides you joined")
	cmd.Flags().BoolVar(&available, "available", false, "only rides you could join")
	return cmd
}
