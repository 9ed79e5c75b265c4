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

	"dukapay/config"
	"dukapay/internal/database"
	"dukapay/internal/router"
	"dukapay/pkg/mpesa"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	client, err := mpesa.New(mpesa.Config{
		ConsumerKey:      cfg.Mpesa.ConsumerKey,
		ConsumerSecret:   cfg.Mpesa.ConsumerSecret,
		Passkey:          cfg.Mpesa.Passkey,
		ShortCode:        cfg.Mpesa.ShortCode,
		CallbackURL:      cfg.Mpesa.CallbackURL,
		OAuthURL:         cfg.Mpesa.OAuthURL,
		STKPushURL:       cfg.Mpesa.STKPushURL,
		TransactionType:  cfg.Mpesa.TransactionType,
		AccountReference: cfg.Mpesa.AccountReference,
		TransactionDesc:  cfg.Mpesa.TransactionDesc,
	})
	if err != nil {
		log.Fatalf("mpesa client: %v", err)
	}

	engine := router.Setup(cfg, db, client)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
