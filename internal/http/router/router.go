package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/cargolink-backend/internal/config"
	"github.com/ignatzorin/cargolink-backend/internal/http/middleware"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/handler"
)

// Handlers - все HTTP обработчики приложения. Auth регистрируется только в development.
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
	Cargo        *handler.CargoHandler
	Bid          *handler.BidHandler
	Transaction  *handler.TransactionHandler
	RWS          *handler.RWSHandler
	ETTN         *handler.ETTNHandler
	Message      *handler.MessageHandler
	Notification *handler.NotificationHandler
	Dashboard    *handler.DashboardHandler
	WS           *handler.WSHandler
}

func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokens middleware.TokenParser,
	limiterStore limiter.Store,
) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limiterStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))

	if h.Auth != nil && cfg.Env == config.EnvDevelopment {
		api.POST("/dev/login", h.Auth.DevLogin)
	}

	// Публичные маршруты
	api.GET("/cargo", h.Cargo.List)
	api.GET("/cargo/:id", middleware.UUIDValidator("id"), h.Cargo.Get)
	api.GET("/rws/:userId", middleware.UUIDValidator("userId"), h.RWS.Get)
	api.GET("/ws", h.WS.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/auth/user", h.Profile.Me)
		protected.PATCH("/auth/user/profile", h.Profile.UpdateProfile)
		protected.PATCH("/auth/user/change-role", h.Profile.ChangeRole)
		protected.PATCH("/auth/user/role", h.Profile.SetRole)

		protected.POST("/cargo", h.Cargo.Create)
		protected.PATCH("/cargo/:id", middleware.UUIDValidator("id"), h.Cargo.Update)
		protected.DELETE("/cargo/:id", middleware.UUIDValidator("id"), h.Cargo.Cancel)
		protected.GET("/cargo/:id/bids", middleware.UUIDValidator("id"), h.Cargo.ListBids)

		protected.POST("/bids", h.Bid.Create)
		protected.GET("/bids/my", h.Bid.ListMy)
		protected.GET("/bids/my-bids", h.Bid.ListMy)
		protected.POST("/bids/:id/status", middleware.UUIDValidator("id"), h.Bid.UpdateStatus)
		protected.PATCH("/bids/:id/status", middleware.UUIDValidator("id"), h.Bid.UpdateStatus)

		protected.GET("/transactions", h.Transaction.List)
		protected.GET("/transactions/:id", middleware.UUIDValidator("id"), h.Transaction.Get)
		protected.PATCH("/transactions/:id/status", middleware.UUIDValidator("id"), h.Transaction.UpdateStatus)
		protected.GET("/transactions/:id/ettn", middleware.UUIDValidator("id"), h.Transaction.GetETTN)

		protected.POST("/rws", h.RWS.Submit)
		protected.GET("/rws/:userId/extended", middleware.UUIDValidator("userId"), h.RWS.GetExtended)

		protected.POST("/ettn", h.ETTN.Create)
		protected.GET("/ettn/:id", middleware.UUIDValidator("id"), h.ETTN.Get)
		protected.PATCH("/ettn/:id/sign", middleware.UUIDValidator("id"), h.ETTN.Sign)
		protected.GET("/ettn/:id/signatures", middleware.UUIDValidator("id"), h.ETTN.Signatures)
		protected.GET("/ettn/:id/verify", middleware.UUIDValidator("id"), h.ETTN.Verify)

		protected.POST("/messages", h.Message.Send)
		protected.GET("/messages/:transactionId", middleware.UUIDValidator("transactionId"), h.Message.List)

		protected.GET("/notifications", h.Notification.List)
		protected.PATCH("/notifications/read-all", h.Notification.MarkAllAsRead)
		protected.PATCH("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), h.Notification.Delete)

		protected.GET("/dashboard", h.Dashboard.Get)
	}

	return r
}
