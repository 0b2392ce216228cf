package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/ticketing-engine/config"
	"github.com/mkravets/ticketing-engine/internal/bootstrap"
	"github.com/mkravets/ticketing-engine/internal/cache"
	"github.com/mkravets/ticketing-engine/internal/clock"
	"github.com/mkravets/ticketing-engine/internal/kafka"
	"github.com/mkravets/ticketing-engine/internal/metrics"
	"github.com/mkravets/ticketing-engine/internal/repository"
	"github.com/mkravets/ticketing-engine/internal/service/booking"
	"github.com/mkravets/ticketing-engine/internal/service/events"
	"github.com/mkravets/ticketing-engine/migrations"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	eventsCacheTTL := time.Duration(cfg.Booking.EventsCacheTTLSeconds) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, eventsCacheTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	m := metrics.New()
	eventRepo := repository.NewEventRepository(pool)
	bookingStore := repository.NewBookingStore(pool)

	eventService := events.NewEventService(eventRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingStore,
		eventRepo,
		clock.NewSystem(),
		cfg.Booking.HoldTTL(),
		booking.WithProducer(producer, cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMetrics(m),
	)

	if err := bootstrap.Run(ctx, cfg, eventService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
