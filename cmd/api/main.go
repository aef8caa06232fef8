package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/drbooking/booking-api/internal/config"
	"github.com/drbooking/booking-api/internal/handler"
	authHandler "github.com/drbooking/booking-api/internal/handler/auth"
	bookingHandler "github.com/drbooking/booking-api/internal/handler/booking"
	directoryHandler "github.com/drbooking/booking-api/internal/handler/directory"
	"github.com/drbooking/booking-api/internal/middleware"
	"github.com/drbooking/booking-api/internal/repository"
	"github.com/drbooking/booking-api/internal/repository/memory"
	"github.com/drbooking/booking-api/internal/repository/postgres"
	"github.com/drbooking/booking-api/internal/router"
	authService "github.com/drbooking/booking-api/internal/service/auth"
	availabilityService "github.com/drbooking/booking-api/internal/service/availability"
	bookingService "github.com/drbooking/booking-api/internal/service/booking"
	directoryService "github.com/drbooking/booking-api/internal/service/directory"
	"github.com/drbooking/booking-api/pkg/auth"
	"github.com/drbooking/booking-api/pkg/metrics"
)

type repositories struct {
	refData repository.ReferenceDataRepository
	booking repository.BookingRepository
	user    repository.UserRepository
	outbox  repository.OutboxRepository
	close   func() error
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	repos, err := buildRepositories(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer repos.close()

	m := metrics.NewMetrics("booking_api")

	// Initialize services
	availabilitySvc := availabilityService.NewService(repos.refData, repos.booking, availabilityService.Config{
		SlotDuration:  cfg.Booking.SlotDuration(),
		DayStartHours: cfg.Booking.DayStartHours,
		CacheTTL:      cfg.Booking.CacheTTL(),
	}, m)
	bookingSvc := bookingService.NewService(repos.refData, repos.booking, repos.outbox, availabilitySvc, bookingService.Config{
		SlotDuration: cfg.Booking.SlotDuration(),
	}, m)
	directorySvc := directoryService.NewService(repos.refData)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(repos.user, jwtSvc)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	directoryH := directoryHandler.NewHandler(directorySvc, availabilitySvc)
	bookingH := bookingHandler.NewHandler(bookingSvc, cfg.Booking.SubmitTimeout())

	r := router.NewRouter(
		authMiddleware,
		authH,
		directoryH,
		bookingH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:     cfg.Server.RateLimitBurst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "booking_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// buildRepositories wires the configured storage driver. The memory driver
// ships with a seeded doctor catalog so the API runs self-contained.
func buildRepositories(cfg *config.Config) (*repositories, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		return &repositories{
			refData: postgres.NewReferenceDataRepository(db),
			booking: postgres.NewBookingRepository(db),
			user:    postgres.NewUserRepository(db),
			outbox:  postgres.NewOutboxRepository(db),
			close:   db.Close,
		}, nil
	case "memory":
		store := memory.NewSeededStore()
		return &repositories{
			refData: memory.NewReferenceDataRepository(store),
			booking: memory.NewBookingRepository(store),
			user:    memory.NewUserRepository(store),
			outbox:  memory.NewOutboxRepository(store),
			close:   func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}
