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

	"github.com/boba-pos/api/internal/config"
	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/events"
	"github.com/boba-pos/api/internal/metrics"
	"github.com/boba-pos/api/internal/notify"
	"github.com/boba-pos/api/internal/router"
	"github.com/boba-pos/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	reg := metrics.NewRegistry()

	publishers := events.Fanout{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, reg.EventDropped)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Printf("WARN: close kafka writer: %v", err)
			}
		}()
		publishers = append(publishers, kp)
		log.Printf("Publishing events to kafka topic %s", cfg.Kafka.Topic)
	}

	mailer := notify.NewMailer(cfg.SMTP)
	if err := mailer.CheckCredentials(); err != nil {
		log.Printf("WARN: order-ready emails disabled until SMTP is configured: %v", err)
	}

	r := router.New(cfg, database.New(pool), pool, hub, router.Deps{
		Notifier: mailer,
		Events:   publishers,
		Metrics:  reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (shop timezone %s, price policy %s)", cfg.Port, cfg.ShopTimezone, cfg.PricePolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: graceful shutdown: %v", err)
	}
}
