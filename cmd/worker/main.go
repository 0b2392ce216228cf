package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/ticketing-engine/config"
	"github.com/mkravets/ticketing-engine/internal/clock"
	"github.com/mkravets/ticketing-engine/internal/email"
	"github.com/mkravets/ticketing-engine/internal/kafka"
	"github.com/mkravets/ticketing-engine/internal/metrics"
	"github.com/mkravets/ticketing-engine/internal/repository"
	"github.com/mkravets/ticketing-engine/internal/service/booking"
	"github.com/mkravets/ticketing-engine/internal/sweeper"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	m := metrics.New()
	eventRepo := repository.NewEventRepository(pool)
	bookingStore := repository.NewBookingStore(pool)
	bookingService := booking.NewBookingService(
		bookingStore,
		eventRepo,
		clock.NewSystem(),
		cfg.Booking.HoldTTL(),
		booking.WithProducer(producer, cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMetrics(m),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sw := sweeper.New(bookingService, cfg.Worker.SweepInterval(), m)
	log.Printf("expiration sweep running every %s", cfg.Worker.SweepInterval())
	if err := sw.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("sweeper error: %v", err)
	}
}
