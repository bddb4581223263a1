package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreee-ff/saferide-go/internal/api"
	"github.com/andreee-ff/saferide-go/internal/config"
	"github.com/andreee-ff/saferide-go/internal/database"
	"github.com/andreee-ff/saferide-go/internal/handler"
	"github.com/andreee-ff/saferide-go/internal/hub"
	"github.com/andreee-ff/saferide-go/internal/repository"
	"github.com/andreee-ff/saferide-go/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	users := repository.NewUserRepository(db)
	rides := repository.NewRideRepository(db)
	routes := repository.NewRouteRepository(db)
	participations := repository.NewParticipationRepository(db)

	authService := service.NewAuthService(users, cfg.JWTSecret)
	rideService := service.NewRideService(rides, participations)
	routeService := service.NewRouteService(routes)
	participationService := service.NewParticipationService(participations, rides)

	h := hub.NewHub()
	go h.Run()

	router := api.SetupRouter(api.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Rides:          handler.NewRideHandler(rideService),
		Routes:         handler.NewRouteHandler(routeService),
		Participations: handler.NewParticipationHandler(participationService),
		AuthService:    authService,
		Hub:            h,
	})

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("SafeRide API listening on %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
