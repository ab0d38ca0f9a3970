package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"ms-records/internal/config"
	"ms-records/internal/database"
	"ms-records/internal/database/migrations"
	eventdb "ms-records/internal/events/db"
	"ms-records/internal/events/event_api"
	eventservice "ms-records/internal/events/service"
	"ms-records/internal/httpapi"
	"ms-records/internal/kafka"
	"ms-records/internal/logger"
	userdb "ms-records/internal/users/db"
	userservice "ms-records/internal/users/service"
	"ms-records/internal/users/user_api"
)

// publisher is the change feed as the services see it.
type publisher interface {
	PublishCreated(ctx context.Context, entity, key string, record any) error
	PublishUpdated(ctx context.Context, entity, key string, record any) error
	PublishDeleted(ctx context.Context, entity, key string) error
	Close() error
}

func newPublisher(ctx context.Context, cfg config.KafkaConfig, log *logger.Logger, clock clockwork.Clock) publisher {
	if !cfg.Enabled {
		log.Info("KAFKA", "Change feed disabled")
		return kafka.NopPublisher{}
	}

	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v, topic %s", cfg.Brokers, cfg.Topic))
	topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := kafka.EnsureTopic(topicCtx, cfg.Brokers, cfg.Topic, log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	return kafka.NewProducer(cfg, log, clock)
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("APP", "Starting records service initialization")
	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid configuration: %v", err))
	}

	ctx := context.Background()

	pool, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open database: %v", err))
	}
	defer pool.Close()

	runner := migrations.NewRunner(pool, migrations.DefaultOptions(), log)
	if err := runner.Run(ctx); err != nil {
		runner.Close()
		log.Fatal("MIGRATION", fmt.Sprintf("Schema migration failed: %v", err))
	}
	if err := runner.Close(); err != nil {
		log.Warn("MIGRATION", fmt.Sprintf("Failed to close migrator: %v", err))
	}

	clock := clockwork.NewRealClock()

	pub := newPublisher(ctx, cfg.Kafka, log, clock)
	defer pub.Close()

	eventService := eventservice.NewEventService(eventdb.New(pool, log, clock), pub, log)
	userService := userservice.NewUserService(userdb.New(pool, log, clock), pub, log)

	log.Info("HTTP", "Setting up router and middleware")
	router := httpapi.NewRouter(httpapi.Deps{
		Events: event_api.NewHandler(eventService, log),
		Users:  user_api.NewHandler(userService, log),
		Health: pool,
		Logger: log,
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Records service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Records service shutdown complete")
	}
}
