package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fajarnugraha/go-rent-reservations/internal/booking"
	"github.com/fajarnugraha/go-rent-reservations/internal/config"
	kafkax "github.com/fajarnugraha/go-rent-reservations/internal/kafka"
	"github.com/fajarnugraha/go-rent-reservations/internal/notifier"
	"github.com/fajarnugraha/go-rent-reservations/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis (consumer dedup)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		Dedup:          &redisx.Deduper{R: rdb, Service: "notifier"},
		Sender:         notifier.LogSender{},
		Currency:       cfg.Currency,
		WhatsAppNumber: cfg.WhatsAppNumber,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, booking.TopicReservationConfirmed, cfg.NotifierWorkers)

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d",
			cfg.NotifierGroup, booking.TopicReservationConfirmed, cfg.NotifierWorkers)
		if err := cons.Start(ctx, svc.HandleReservationConfirmed); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
}
