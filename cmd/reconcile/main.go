package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/database"
	"github.com/taskhive/taskhive-server/internal/pkg/email"
	"github.com/taskhive/taskhive-server/internal/pkg/paypal"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/service"
)

// Settles pending orders whose return-URL capture and webhook were both
// lost. Meant to run from cron.
func main() {
	olderThan := flag.Duration("older-than", time.Hour, "only reconcile orders pending for at least this long")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	paypalClient := paypal.NewClient(paypal.Config{
		BaseURL:      cfg.PayPal.BaseURL,
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
	})

	userRepo := repository.NewUserRepository(db)
	notificationService := service.NewNotificationService(
		repository.NewNotificationRepository(db), userRepo, nil, email.NewService(&cfg.Email))

	catalog, err := service.NewTierCatalog(cfg.Tiers)
	if err != nil {
		log.Fatalf("Invalid tier configuration: %v", err)
	}

	paymentService := service.NewPaymentService(
		db,
		paypalClient,
		repository.NewOrderRepository(db),
		repository.NewSubscriptionRepository(db),
		userRepo,
		repository.NewWalletRepository(db),
		repository.NewTransactionRepository(db),
		notificationService,
		catalog,
		&cfg.PayPal,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	completed, failed, err := paymentService.Reconcile(ctx, *olderThan)
	if err != nil {
		log.Fatalf("Reconcile failed: %v", err)
	}
	log.Printf("Reconcile done: %d completed, %d failed", completed, failed)
}
