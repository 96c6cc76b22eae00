package api

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/api/handler"
	"github.com/taskhive/taskhive-server/internal/api/middleware"
	"github.com/taskhive/taskhive-server/internal/repository"
	"github.com/taskhive/taskhive-server/internal/service"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	taskHandler         *handler.TaskHandler
	walletHandler       *handler.WalletHandler
	paymentHandler      *handler.PaymentHandler
	notificationHandler *handler.NotificationHandler
	adminHandler        *handler.AdminHandler
	websocketHandler    *handler.WebSocketHandler
	userRepo            *repository.UserRepository
	catalog             *service.TierCatalog
	rdb                 *redis.Client
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	taskHandler *handler.TaskHandler,
	walletHandler *handler.WalletHandler,
	paymentHandler *handler.PaymentHandler,
	notificationHandler *handler.NotificationHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	userRepo *repository.UserRepository,
	catalog *service.TierCatalog,
	rdb *redis.Client,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		taskHandler:         taskHandler,
		walletHandler:       walletHandler,
		paymentHandler:      paymentHandler,
		notificationHandler: notificationHandler,
		adminHandler:        adminHandler,
		websocketHandler:    websocketHandler,
		userRepo:            userRepo,
		catalog:             catalog,
		rdb:                 rdb,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.AccessLog())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket (token in query, see handler)
		api.GET("/ws", r.websocketHandler.Serve)

		// Public - auth, rate limited per IP
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit(r.rdb, r.cfg.RateLimit))
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// Public - PayPal server-to-server callbacks, verified by signature
		api.POST("/payments/webhook", r.paymentHandler.Webhook)

		// Authenticated routes. LoadUser refreshes the row on every request
		// so stage checks always see current tier and approval state.
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		authenticated.Use(middleware.LoadUser(r.userRepo))
		{
			// Profile and access snapshot, reachable at every stage
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.GET("/access", r.userHandler.GetAccess)
				user.POST("/change-password", r.authHandler.ChangePassword)
			}

			// Orientation
			orientation := authenticated.Group("/orientation")
			orientation.Use(middleware.AccessGate(r.catalog, service.RouteOrientation))
			{
				orientation.GET("/progress", r.taskHandler.OrientationProgress)
				orientation.POST("/complete-task", r.taskHandler.CompleteOrientationTask)
			}

			// Tasks: listing and starting are stage gated; orientation users
			// see their remaining orientation work through the same list.
			tasks := authenticated.Group("/tasks")
			tasks.Use(middleware.AccessGate(r.catalog, service.RouteTasks))
			{
				tasks.GET("", r.taskHandler.List)
				tasks.POST("/:id/start", r.taskHandler.Start)
				tasks.GET("/mine", r.taskHandler.ListMine)
			}

			// Subscription checkout
			subscribe := authenticated.Group("/payments")
			subscribe.Use(middleware.AccessGate(r.catalog, service.RouteSubscribe))
			{
				subscribe.POST("/orders", r.paymentHandler.CreateOrder)
				subscribe.POST("/orders/:id/capture", r.paymentHandler.CaptureOrder)
				subscribe.POST("/orders/:id/retry", r.paymentHandler.RetryPayment)
			}
			authenticated.GET("/payments/orders", r.paymentHandler.ListOrders)

			// Wallet, earning-stage only
			wallet := authenticated.Group("/wallet")
			wallet.Use(middleware.AccessGate(r.catalog, service.RouteWallet))
			{
				wallet.GET("", r.walletHandler.Get)
				wallet.POST("/withdrawals", r.walletHandler.Withdraw)
				wallet.GET("/withdrawals", r.walletHandler.ListWithdrawals)
				wallet.GET("/payment-methods", r.walletHandler.ListPaymentMethods)
				wallet.POST("/payment-methods", r.walletHandler.AddPaymentMethod)
				wallet.PUT("/payment-methods/:id/primary", r.walletHandler.SetPrimaryPaymentMethod)
				wallet.DELETE("/payment-methods/:id", r.walletHandler.DeletePaymentMethod)
			}

			// Notifications
			notifications := authenticated.Group("/notifications")
			notifications.Use(middleware.AccessGate(r.catalog, service.RouteNotifications))
			{
				notifications.GET("", r.notificationHandler.List)
				notifications.POST("/:id/read", r.notificationHandler.MarkRead)
			}

			// Admin
			admin := authenticated.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.GET("/stats", r.adminHandler.Stats)
				admin.GET("/users", r.adminHandler.ListUsers)
				admin.POST("/users/:id/approve", r.adminHandler.ApproveUser)
				admin.POST("/users/:id/reject", r.adminHandler.RejectUser)
				admin.GET("/user-tasks/pending", r.adminHandler.ListPendingUserTasks)
				admin.POST("/user-tasks/:id/approve", r.adminHandler.ApproveUserTask)
				admin.POST("/user-tasks/:id/reject", r.adminHandler.RejectUserTask)
				admin.GET("/withdrawals", r.adminHandler.ListWithdrawals)
				admin.PATCH("/withdrawals/:id", r.adminHandler.UpdateWithdrawal)
				admin.POST("/tasks", r.taskHandler.Create)
				admin.PUT("/tasks/:id", r.taskHandler.Update)
				admin.DELETE("/tasks/:id", r.taskHandler.Delete)
			}
		}
	}

	return engine
}
