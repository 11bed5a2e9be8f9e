package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/okoshkin/storefront/internal/cart"
	"github.com/okoshkin/storefront/internal/config"
	"github.com/okoshkin/storefront/internal/handlers"
	"github.com/okoshkin/storefront/internal/logging"
	"github.com/okoshkin/storefront/internal/mykafka"
	"github.com/okoshkin/storefront/internal/orders"
	"github.com/okoshkin/storefront/internal/service"
	httpserver "github.com/okoshkin/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	log := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Error("database init failed", "err", err)
		os.Exit(1)
	}

	producer, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Warn("kafka unavailable, events will be dropped", "err", err)
		producer = nil
	}

	tokenService := &service.TokenService{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		AuthHandler:     &handlers.AuthHandler{DB: db, Tokens: tokenService, Producer: producer},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: producer},
		CategoryHandler: &handlers.CategoryHandler{DB: db, Producer: producer},
		CartHandler:     &handlers.CartHandler{Engine: cart.NewEngine(db), Producer: producer},
		OrderHandler:    &handlers.OrderHandler{Orders: orders.NewService(db), Producer: producer},
		UserHandler:     &handlers.UserHandler{DB: db},
		SummaryHandler:  &handlers.SummaryHandler{DB: db},
		TokenService:    tokenService,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", "err", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("db close error", "err", err)
		}
	}
	if err := producer.Close(); err != nil {
		log.Error("kafka close error", "err", err)
	}

	log.Info("shutdown complete")
}
