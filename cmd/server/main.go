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
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/api"
	"github.com/taskhive/taskhive-server/internal/api/handler"
	"github.com/taskhive/taskhive-server/internal/database"
	"github.com/taskhive/taskhive-server/internal/pkg/email"
	"github.com/taskhive/taskhive-server/internal/pkg/paypal"
	"github.com/taskhive/taskhive-server/internal/pkg/ws"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/service"
	"github.com/taskhive/taskhive-server/pkg/logger"
)

func main() {
	// .env is optional; the config layer reads the environment either way.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		zap.L().Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zap.L().Fatal("database migrate failed", zap.Error(err))
	}
	zap.L().Info("database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		// Redis only backs the auth rate limiter; run without it.
		zap.L().Warn("redis unavailable, auth rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	catalog, err := service.NewTierCatalog(cfg.Tiers)
	if err != nil {
		zap.L().Fatal("invalid tier configuration", zap.Error(err))
	}

	wsHub := ws.NewHub()
	mailer := email.NewService(&cfg.Email)
	paypalClient := paypal.NewClient(paypal.Config{
		BaseURL:      cfg.PayPal.BaseURL,
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
	})

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userTaskRepo := repository.NewUserTaskRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, userRepo, wsHub, mailer)
	authService := service.NewAuthService(db, userRepo, walletRepo, cfg)
	userService := service.NewUserService(userRepo, userTaskRepo, taskRepo, subRepo, walletRepo, withdrawalRepo, catalog)
	taskService := service.NewTaskService(db, taskRepo, userTaskRepo, userRepo, catalog)
	approvalService := service.NewApprovalService(db, userRepo, userTaskRepo, walletRepo, txnRepo, withdrawalRepo, notificationService)
	walletService := service.NewWalletService(db, walletRepo, txnRepo, withdrawalRepo, methodRepo, notificationService)
	paymentService := service.NewPaymentService(db, paypalClient, orderRepo, subRepo, userRepo, walletRepo, txnRepo, notificationService, catalog, &cfg.PayPal)

	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewTaskHandler(taskService),
		handler.NewWalletHandler(walletService),
		handler.NewPaymentHandler(paymentService, &cfg.PayPal),
		handler.NewNotificationHandler(notificationService),
		handler.NewAdminHandler(approvalService, userService),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret),
		userRepo,
		catalog,
		rdb,
		cfg,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router.Setup(),
	}

	go func() {
		zap.L().Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("forced shutdown", zap.Error(err))
	}
}
