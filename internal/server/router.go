package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/dkoval/shopledger-backend/internal/handlers"
  "github.com/dkoval/shopledger-backend/internal/middleware"
)

type RouterConfig struct {
  ServiceName       string
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  UserHandler       *handlers.UserHandler
  ProductHandler    *handlers.ProductHandler
  OrderHandler      *handlers.OrderHandler
  WishlistHandler   *handlers.WishlistHandler
  AccountHandler    *handlers.AccountHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()
  router.Use(otelgin.Middleware(cfg.ServiceName))

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  api := router.Group("/api")
  {
    api.POST("/auth/signup", cfg.AuthHandler.Signup)
    api.POST("/auth/login", cfg.AuthHandler.Login)
    api.GET("/products", cfg.ProductHandler.ListAvailable)
    api.GET("/products/:id", cfg.ProductHandler.GetByID)
    api.GET("/users/:address", cfg.UserHandler.GetProfile)
  }

// ===============
// || Protected ||
// ===============
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/auth/logout", cfg.AuthHandler.Logout)
  // Roles
  protected.POST("/market/buyer", cfg.UserHandler.RegisterBuyer)
  protected.PUT("/market/buyer", cfg.UserHandler.UpdateBuyer)
  protected.POST("/market/seller", cfg.UserHandler.RegisterSeller)
  protected.PUT("/market/seller", cfg.UserHandler.UpdateSeller)
  // Catalog
  protected.POST("/products", cfg.ProductHandler.Add)
  protected.PUT("/products/:id", cfg.ProductHandler.Update)
  // Orders
  protected.POST("/orders", cfg.OrderHandler.StartTrade)
  protected.POST("/orders/:id/complete", cfg.OrderHandler.Complete)
  protected.POST("/orders/:id/refund", cfg.OrderHandler.ApplyRefund)
  protected.POST("/orders/:id/approve-refund", cfg.OrderHandler.ApproveRefund)
  protected.GET("/orders/mine", cfg.OrderHandler.GetMyOrders)
  protected.GET("/orders", cfg.OrderHandler.GetAllOrders)
  protected.GET("/orders/pending", cfg.OrderHandler.GetPendingApproval)
  // Wishlist
  protected.GET("/wishlist", cfg.WishlistHandler.List)
  protected.POST("/wishlist/:id", cfg.WishlistHandler.Add)
  protected.DELETE("/wishlist/:id", cfg.WishlistHandler.Remove)
  // Account
  protected.GET("/account", cfg.AccountHandler.Get)
  protected.POST("/account/deposit", cfg.AccountHandler.Deposit)

  return router
}
