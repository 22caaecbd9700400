package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ihale.org/internal/admin"
	"ihale.org/internal/auction"
	"ihale.org/internal/auth"
	"ihale.org/internal/config"
	"ihale.org/internal/httpapi"
	"ihale.org/internal/obs"
	"ihale.org/internal/store/pg"
	"ihale.org/internal/ticket"
	"ihale.org/internal/user"
)

var version = "0.3.1"

func main() {
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// With no DSN the API runs entirely on in-memory stores.
	var (
		db       *sql.DB
		users    user.Store
		auctions auction.Service
		tickets  ticket.Service
	)
	if cfg.DatabaseDSN != "" {
		store, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db = store.DB()
		userStore := store.Users()
		users = userStore
		auctions = store.Auctions(userStore)
		tickets = store.Tickets()
	} else {
		memUsers := user.NewMemory()
		users = memUsers
		auctions = auction.NewInMemory(memUsers)
		tickets = ticket.NewInMemory(memUsers)
	}

	codec, err := auth.NewTokenCodec(cfg.AuthSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	authSvc := auth.NewService(users, codec)
	adminSvc := admin.NewService(users, auctions, tickets)

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, users, auctions, tickets, adminSvc)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting ihale-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
