package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/minicars/reserve/internal/auth"
	"github.com/minicars/reserve/internal/blob"
	"github.com/minicars/reserve/internal/catalog"
	"github.com/minicars/reserve/internal/config"
	"github.com/minicars/reserve/internal/events"
	"github.com/minicars/reserve/internal/httpx"
	kafkax "github.com/minicars/reserve/internal/kafka"
	"github.com/minicars/reserve/internal/postgres"
	"github.com/minicars/reserve/internal/redisx"
	"github.com/minicars/reserve/internal/reservation"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Blob storage gateway
	store, err := blob.New(blob.Config{
		URL:    cfg.StorageURL,
		APIKey: cfg.StorageAPIKey,
		Bucket: cfg.StorageBucket,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("blob store")
	}

	// Kafka producers, one per reservation topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicReservationCreated, 1024, log)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicReservationCancelled, 1024, log)
	pCancelled.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicReservationStatus, 1024, log)
	pStatus.Start(ctx)

	// Services
	authSvc := &auth.Service{
		Store:    &auth.Repo{DB: db},
		Sessions: &auth.RedisSessions{RDB: rdb},
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL,
		Log:      log,
	}
	if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap")
	}

	catalogSvc := catalog.NewService(&catalog.Repo{DB: db}, store, log)
	if err := catalogSvc.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial catalog load")
	}

	reservationSvc := reservation.NewService(
		&reservation.Repo{DB: db},
		catalogSvc,
		reservation.Publishers{Created: pCreated, Cancelled: pCancelled, Status: pStatus},
		log,
		cfg.ServiceName,
	)

	// Router & handlers
	router := httpx.NewRouter(log)
	(&httpx.AuthHandler{Auth: authSvc}).Register(router)
	(&httpx.CatalogHandler{Catalog: catalogSvc, Auth: authSvc}).Register(router)
	(&httpx.ReservationsHandler{Reservations: reservationSvc, Auth: authSvc}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range []*kafkax.Producer{pCreated, pCancelled, pStatus} {
		p.Close() // close inbox -> flush & close writer
	}
	cancel()
	for _, p := range []*kafkax.Producer{pCreated, pCancelled, pStatus} {
		p.WaitClosed() // drain
	}
}
