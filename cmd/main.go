package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/dkoval/shopledger-backend/internal/logger"
  "github.com/dkoval/shopledger-backend/internal/utils"
  "github.com/dkoval/shopledger-backend/internal/db"
  "github.com/dkoval/shopledger-backend/internal/clients/redis"
  "github.com/dkoval/shopledger-backend/internal/observability"
  "github.com/dkoval/shopledger-backend/internal/repos"
  "github.com/dkoval/shopledger-backend/internal/services"
  "github.com/dkoval/shopledger-backend/internal/handlers"
  "github.com/dkoval/shopledger-backend/internal/middleware"
  "github.com/dkoval/shopledger-backend/internal/server"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  listingFee := utils.GetEnvAsInt64("LISTING_FEE", 1000, log)

  // Tracing
  shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "shopledger",
    Environment: utils.GetEnv("ENVIRONMENT", "development", log),
    Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
  })
  if shutdownOTel != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = shutdownOTel(ctx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  accountRepo := repos.NewAccountRepo(thePG, log)
  marketRepo := repos.NewMarketRepo(thePG, log)
  productRepo := repos.NewProductRepo(thePG, log)
  orderRepo := repos.NewOrderRepo(thePG, log)
  wishlistRepo := repos.NewWishlistRepo(thePG, log)

  // Market singleton row
  if _, err := marketRepo.Ensure(context.Background(), nil, listingFee); err != nil {
    log.Error("Failed to ensure market state", "error", err)
    os.Exit(1)
  }

  // Redis cache (optional)
  var productCache redis.Cache
  if cache, err := redis.NewCache(log); err != nil {
    log.Warn("Redis cache unavailable, catalog reads go straight to postgres", "error", err)
  } else {
    productCache = cache
    defer productCache.Close()
  }

  // Services
  log.Info("Setting up Services from main...")
  authService := services.NewAuthService(thePG, log, userRepo, accountRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  identityService := services.NewIdentityService(thePG, log, userRepo, accountRepo, marketRepo)
  catalogService := services.NewCatalogService(thePG, log, productRepo, userRepo, productCache)
  ledgerService := services.NewLedgerService(thePG, log, orderRepo, productRepo, userRepo, accountRepo, marketRepo, productCache)
  wishlistService := services.NewWishlistService(thePG, log, wishlistRepo, productRepo, userRepo)
  accountService := services.NewAccountService(thePG, log, accountRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(identityService)
  productHandler := handlers.NewProductHandler(catalogService)
  orderHandler := handlers.NewOrderHandler(ledgerService)
  wishlistHandler := handlers.NewWishlistHandler(wishlistService)
  accountHandler := handlers.NewAccountHandler(accountService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    ServiceName:     "shopledger",
    AuthHandler:     authHandler,
    AuthMiddleware:  authMiddleware,
    UserHandler:     userHandler,
    ProductHandler:  productHandler,
    OrderHandler:    orderHandler,
    WishlistHandler: wishlistHandler,
    AccountHandler:  accountHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
