package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderflow/config"
	_ "orderflow/docs"
	"orderflow/internal/catalog"
	"orderflow/internal/events"
	"orderflow/internal/repository"
	"orderflow/internal/service"
	transport "orderflow/internal/transport/http"
	"orderflow/pkg/database"
	"orderflow/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @Title Orderflow API
// @Version 1.0
// @Description Prices carts against the catalog and records orders idempotently
// @BasePath /
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var cat catalog.Catalog = catalog.NewStoreCatalog(repos.Products)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		cat = catalog.NewCachedCatalog(cat, rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		log.Info("catalog cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// Event bus is optional (nil disables publishing)
	var bus service.EventBus
	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer pub.Close()
		bus = pub
		log.Info("order event publishing enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	svc := service.NewOrderService(repos, cat, bus)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: transport.Router(svc, log),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting order HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down order HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("order HTTP server stopped gracefully")
}
