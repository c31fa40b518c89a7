package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mlecomte/foyer/internal/avatar"
	"github.com/mlecomte/foyer/internal/database"
	"github.com/mlecomte/foyer/internal/logging"
	"github.com/mlecomte/foyer/internal/server"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	logger := logging.Setup(os.Getenv("FOYER_LOG_LEVEL"), os.Getenv("FOYER_LOG_FORMAT"))

	port := os.Getenv("FOYER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("FOYER_DB_PATH")
	if dbPath == "" {
		dbPath = "foyer.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		Avatar: avatar.Config{
			Endpoint:      os.Getenv("FOYER_S3_ENDPOINT"),
			Bucket:        os.Getenv("FOYER_S3_BUCKET"),
			Region:        os.Getenv("FOYER_S3_REGION"),
			AccessKey:     os.Getenv("FOYER_S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("FOYER_S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("FOYER_S3_PUBLIC_URL"),
		},
		VAPIDPublicKey:  os.Getenv("FOYER_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("FOYER_VAPID_PRIVATE_KEY"),
	}

	srv := server.New(db, cfg, logger)

	// Periodic cleanup of expired sessions and stale rate-limit buckets
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("session cleanup", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Foyer running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
