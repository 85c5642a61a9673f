package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	_ "storefront-service/docs"
	"storefront-service/internal/cache"
	"storefront-service/internal/hashing"
	"storefront-service/internal/producer"
	"storefront-service/internal/repository"
	"storefront-service/internal/router"
	"storefront-service/internal/service"
	"storefront-service/internal/token"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @Title Storefront API
// @Version 1.0
// @Description Витрина магазина: каталог, оформление и отслеживание заказов, админка заказов
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var catalog repository.ProductRepo = repos.Products
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("failed to create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		catalog = cache.NewCachedProductRepo(repos.Products, redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
		log.Info("Redis cache enabled")
	} else {
		log.Info("Redis cache disabled")
	}

	var events service.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		p := producer.NewOrderEventProducer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, log)
		defer p.Close()
		events = p
		log.Info("Kafka order events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrdersTopic))
	} else {
		events = producer.NewLogEventBus(log)
		log.Info("Kafka not configured, order events are only logged")
	}

	hasher := hashing.NewBcrypt(0)
	tokens := token.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	// цены при оформлении заказа всегда читаются из базы, кэш обслуживает только витрину
	orderSvc := service.NewOrderService(repos.Orders, repos.Products, events, log)
	productSvc := service.NewProductService(catalog, log)
	authSvc := service.NewAuthService(repos.Users, hasher, tokens, cfg.JWT.AccessExp, log)

	r := router.Router(router.Deps{
		Orders:      orderSvc,
		Products:    productSvc,
		Auth:        authSvc,
		CORSOrigins: cfg.CORSOrigins,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to run http server", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
		return
	}
	log.Info("HTTP server stopped gracefully")
}
