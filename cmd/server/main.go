package main

import (
	"context"
	"database/sql"
	"net/http"

	"gerai-be/internal/address"
	"gerai-be/internal/cart"
	"gerai-be/internal/checkout"
	"gerai-be/internal/config"
	"gerai-be/internal/db"
	"gerai-be/internal/events"
	"gerai-be/internal/httpapi"
	"gerai-be/internal/logger"
	"gerai-be/internal/order"
	"gerai-be/internal/product"
	"gerai-be/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Seams for tests.
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)

	database := initDBFunc(cfg)
	defer database.Close()

	router := newServer(cfg, database)

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	return startServerFunc(":"+cfg.AppPort, router)
}

func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	productRepo := product.NewRepository(database)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	addressRepo := address.NewRepository(database)
	addressSvc := address.NewService(addressRepo)

	var sessionStore checkout.Store
	if cfg.SessionBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		sessionStore = checkout.NewRedisStore(client)
	} else {
		sessionStore = checkout.NewMemoryStore()
	}
	checkoutSvc := checkout.NewService(sessionStore, cartSvc, addressRepo)

	// Without brokers order events are dropped silently.
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, 256)
		producer.Start(context.Background())
		publisher = producer
	}

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, checkoutSvc, cartSvc, addressRepo, publisher)

	return httpapi.NewRouter(httpapi.Deps{
		Users:     userSvc,
		Products:  productRepo,
		Carts:     cartSvc,
		Checkouts: checkoutSvc,
		Orders:    orderSvc,
		Addresses: addressSvc,
	})
}
