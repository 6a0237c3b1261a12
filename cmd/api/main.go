package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fajarnugraha/go-rent-reservations/internal/booking"
	"github.com/fajarnugraha/go-rent-reservations/internal/config"
	"github.com/fajarnugraha/go-rent-reservations/internal/httpx"
	kafkax "github.com/fajarnugraha/go-rent-reservations/internal/kafka"
	"github.com/fajarnugraha/go-rent-reservations/internal/postgres"
	"github.com/fajarnugraha/go-rent-reservations/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (confirmed reservations)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, booking.TopicReservationConfirmed, 1024)
	prod.Start(ctx)

	// Store, service & handlers
	store := &booking.PGStore{DB: db}
	svc := &booking.Service{Store: store, Publisher: prod, ServiceName: cfg.ServiceName}

	router := httpx.NewRouter()
	bh := &httpx.BookingsHandler{
		Svc:            svc,
		Redis:          rdb,
		Currency:       cfg.Currency,
		WhatsAppNumber: cfg.WhatsAppNumber,
	}
	bh.Register(router)
	ph := &httpx.PropertiesHandler{Svc: svc}
	ph.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
