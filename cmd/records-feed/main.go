package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ms-records/internal/config"
	"ms-records/internal/kafka"
	"ms-records/internal/logger"
)

// records-feed tails the change feed and logs every record change.
func main() {
	group := flag.String("group", "records-feed", "consumer group id")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka, *group, log)
	defer consumer.Close()

	err = consumer.Run(ctx, func(change kafka.Change) {
		log.Info("FEED", fmt.Sprintf("%s key=%s at=%d id=%s", change.Type(), change.Key, change.OccurredAt, change.ID))
	})
	if err != nil {
		log.Fatal("KAFKA", err.Error())
	}
	log.Info("APP", "Change feed consumer stopped")
}
