package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "procurement/api/swagger" // swagger docs
	"procurement/internal/cache"
	"procurement/internal/config"
	"procurement/internal/database"
	"procurement/internal/handler"
	"procurement/internal/metrics"
	"procurement/internal/middleware"
	"procurement/internal/repository"
	"procurement/internal/service"
	"procurement/internal/token"
	"procurement/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Purchase Requests API
// @version         1.0
// @description     Purchase request approvals and category catalog.
// @host            localhost:3000
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database.DSN(), cfg.Database.Debug)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.Info("connected to PostgreSQL")
	if cfg.Database.Seed {
		if err := database.Seed(db); err != nil {
			log.WithError(err).Warn("failed to seed categories")
		}
	}

	// Revoked tokens live in redis when configured, in memory otherwise.
	var blacklist cache.TokenBlacklist
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Fatal("redis connection failed")
		}
		defer redisClient.Close()
		blacklist = cache.NewRedisBlacklist(redisClient)
	} else {
		log.Warn("REDIS_ADDR not set, token revocation is kept in memory")
		blacklist = cache.NewMemoryBlacklist()
	}

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	auth := middleware.NewAuthMiddleware(tokens, blacklist)

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	requestRepo := repository.NewPurchaseRequestRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authService := service.NewAuthService(userRepo, tokens, blacklist)
	categoryService := service.NewCategoryService(txManager, categoryRepo, requestRepo, auditRepo)
	requestService := service.NewPurchaseRequestService(txManager, requestRepo, categoryRepo, auditRepo, wsHub)
	statisticsService := service.NewStatisticsService(requestRepo)
	exportService := service.NewExportService(requestRepo, categoryRepo)
	auditService := service.NewAuditService(auditRepo)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.HTTP.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, tokens, blacklist, c)
	})
	handler.NewHealthHandler(db).RegisterRoutes(router.Group(""))

	apiGroup := router.Group("/api")
	handler.NewAuthHandler(authService, auth).RegisterRoutes(apiGroup)
	handler.NewStatisticsHandler(statisticsService, exportService, auth).RegisterRoutes(apiGroup)
	handler.NewPurchaseRequestHandler(requestService, auth).RegisterRoutes(apiGroup)
	handler.NewCategoryHandler(categoryService, auth).RegisterRoutes(apiGroup)
	handler.NewAuditHandler(auditService, auth).RegisterRoutes(apiGroup)

	srv := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
