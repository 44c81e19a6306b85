package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/minicars/reserve/internal/config"
	"github.com/minicars/reserve/internal/events"
	kafkax "github.com/minicars/reserve/internal/kafka"
	"github.com/minicars/reserve/internal/notifier"
	"github.com/minicars/reserve/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	svcName := cfg.ServiceName + "-notifier"
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", svcName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		Cache:       &notifier.RedisCache{RDB: rdb},
		Log:         log,
		ServiceName: svcName,
	}

	group := getenv("NOTIFIER_GROUP", "reserve-notifier")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	topics := []string{
		events.TopicReservationCreated,
		events.TopicReservationCancelled,
		events.TopicReservationStatus,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topics, workers, log)

	go func() {
		log.Info().Str("group", group).Strs("topics", topics).Int("workers", workers).
			Msg("notifier consumer started")
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down consumer")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
