package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/drbooking/booking-api/internal/config"
	"github.com/drbooking/booking-api/internal/email"
	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/internal/repository"
	"github.com/drbooking/booking-api/internal/repository/memory"
	"github.com/drbooking/booking-api/internal/repository/postgres"
	"github.com/drbooking/booking-api/internal/service/notification"
	"github.com/drbooking/booking-api/pkg/logger"
	"github.com/drbooking/booking-api/pkg/messaging"
	redisbroker "github.com/drbooking/booking-api/pkg/messaging/redis"
	"github.com/drbooking/booking-api/pkg/metrics"
	"github.com/drbooking/booking-api/pkg/worker"
)

// SMTPEnv is read from SMTP_* environment variables. Credentials never live
// in the config file.
type SMTPEnv struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"587"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	From     string `envconfig:"FROM" default:"noreply@drbooking.com"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	lg := &logger.Logger{ZL: log.Logger}

	var smtpEnv SMTPEnv
	if err := envconfig.Process("smtp", &smtpEnv); err != nil {
		log.Fatal().Err(err).Msg("Failed to read SMTP environment")
	}

	outboxRepo, cleanup, err := buildOutboxRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer cleanup()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	emailSvc := email.NewSMTPService(email.SMTPConfig{
		Host:     smtpEnv.Host,
		Port:     smtpEnv.Port,
		Username: smtpEnv.Username,
		Password: smtpEnv.Password,
		From:     smtpEnv.From,
	})
	notificationSvc := notification.NewService(emailSvc, lg)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  time.Duration(cfg.Outbox.PollIntervalSeconds) * time.Second,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    time.Duration(cfg.Outbox.RetryDelaySeconds) * time.Second,
		},
		lg,
		metrics.NewMetrics("outbox_processor"),
	)

	setupHealthCheck(lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		lg.ZL.Info().Msg("Shutting down...")
		cancel()
	}()

	go consumeBookingEvents(ctx, broker, notificationSvc, lg)

	processor.Start(ctx)
}

// consumeBookingEvents subscribes to booking channels and hands each payload
// to the notification service.
func consumeBookingEvents(ctx context.Context, broker messaging.Broker, svc *notification.Service, lg *logger.Logger) {
	for _, eventType := range []string{model.EventBookingCreated, model.EventBookingCancelled} {
		msgs, err := broker.Subscribe(ctx, eventType)
		if err != nil {
			lg.ZL.Error().Err(err).Str("channel", eventType).Msg("Failed to subscribe")
			continue
		}

		go func(eventType string, msgs <-chan []byte) {
			for payload := range msgs {
				if err := svc.HandleEvent(ctx, eventType, payload); err != nil {
					lg.ZL.Error().Err(err).Str("event_type", eventType).Msg("Failed to handle event")
				}
			}
		}(eventType, msgs)
	}
}

func buildOutboxRepository(cfg *config.Config) (repository.OutboxRepository, func() error, error) {
	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewSeededStore()
		return memory.NewOutboxRepository(store), func() error { return nil }, nil
	default:
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewOutboxRepository(db), db.Close, nil
	}
}

func setupHealthCheck(lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			lg.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}
