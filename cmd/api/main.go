package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/stagetrade/stagetrade-backend/internal/config"
	"github.com/stagetrade/stagetrade-backend/internal/db"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/server"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	srv := server.New(nil, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	// Connect after the listener is up so health checks pass while Cloud SQL
	// warms up. Repositories answer ErrDBNotReady until SetDB runs.
	go func() {
		cfg, err := config.Load()
		if err != nil {
			log.Printf("config load error: %v", err)
			return
		}
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(
			&model.Listing{},
			&model.Notification{},
			&model.PushToken{},
			&model.PushSubscription{},
			&model.NotificationPushPreference{},
			&model.ListingAlertPreference{},
			&model.ListingAlertSent{},
			&model.Connection{},
			&model.Message{},
			&model.Purchase{},
			&model.Profile{},
			&model.UserRevenue{},
		); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
