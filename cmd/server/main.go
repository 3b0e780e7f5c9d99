package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "librarydesk/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"librarydesk/internal/auth"
	"librarydesk/internal/cache"
	"librarydesk/internal/config"
	"librarydesk/internal/events"
	"librarydesk/internal/handler"
	"librarydesk/internal/router"
	"librarydesk/internal/service"
	"librarydesk/internal/storage"
)

// @title Library Desk API
// @version 1.0
// @description Library catalog and loan ledger with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, storage.Options{Reset: cfg.ResetDB, Migrate: true})
	if err != nil {
		log.Fatalf("store init: %v", err)
	}
	defer closeStore()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			log.Printf("events: amqp unavailable, loan events disabled: %v", err)
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	policy := service.PolicyFromConfig(cfg)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// Initialize services
	authService := service.NewAuthService(store.Users(), hasher, jwtService, tokenStore, cfg.AdminSecretCode, policy)
	userService := service.NewUserService(store, cacheClient)
	catalogService := service.NewCatalogService(store, cacheClient)
	ledgerService := service.NewLedgerService(store, cacheClient, publisher, policy)

	// Register routes
	router.Register(e, cfg, tokenStore, router.Handlers{
		Auth:  handler.NewAuthHandler(authService),
		Users: handler.NewUserHandler(userService),
		Books: handler.NewBookHandler(catalogService),
		Loans: handler.NewLoanHandler(ledgerService),
	})

	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	// SwaggerHost may already include scheme (http:// or https://)
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
