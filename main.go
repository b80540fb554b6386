package main

import (
	"context"
	"errors"
	"flag"
	"log"
	oshttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prattle/internal/api"
	"prattle/internal/config"
	"prattle/internal/http"
	"prattle/internal/source"
	"prattle/internal/storage"
	"prattle/internal/storage/memory"
	"prattle/internal/store"

	"golang.org/x/sync/errgroup"
)

func run(ctx context.Context, dev bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var persisted storage.Store
	if dev {
		persisted = memory.New()
	} else {
		persisted, err = storage.NewBboltStore(cfg.DBFile)
		if err != nil {
			return err
		}
	}
	defer func() { _ = persisted.Close() }()

	conversations, messages := source.Seed()
	mock := source.NewMock(source.Config{
		FetchLatency:  cfg.FetchLatency,
		CreateLatency: cfg.CreateLatency,
		Conversations: conversations,
		Messages:      messages,
	})

	st := store.New(persisted, mock)
	apiServer := http.NewAPIServer(api.New(st), cfg.APIAddr, cfg.CORSOrigin)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := apiServer.Start()
		if err != nil && err != oshttp.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
		return nil
	})

	return g.Wait()
}

func main() {
	dev := flag.Bool("dev", false, "run with in-memory storage (no db file)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *dev); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Application error: %v", err)
	}
}
