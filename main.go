package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sharehub/sharehub/sharehub"
	"github.com/sharehub/sharehub/sharehub/auth"
	"github.com/sharehub/sharehub/sharehub/claims"
	"github.com/sharehub/sharehub/sharehub/database"
	"github.com/sharehub/sharehub/sharehub/database/repositories"
	"github.com/sharehub/sharehub/sharehub/logger"
	"github.com/sharehub/sharehub/sharehub/services"
	"github.com/sharehub/sharehub/web/handlers"
	"github.com/sharehub/sharehub/web/middleware"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler("ShareHub")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting ShareHub API",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := sharehub.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to database...")
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Database ready")

	listingRepo := repositories.NewListingRepository(db.BunDB())
	claimRepo := repositories.NewClaimRepository(db.BunDB())

	resolver := auth.NewTokenResolver(cfg.Auth.AllowUnverifiedIdentity)
	if cfg.Auth.AllowUnverifiedIdentity {
		slog.Warn("Unverified identity fallback is enabled; callers may assert their own user id")
	}

	var storage *services.StorageService
	if cfg.Storage.Bucket != "" {
		storage = services.NewStorageService(
			cfg.Storage.Key,
			cfg.Storage.Secret,
			cfg.Storage.Region,
			cfg.Storage.Bucket,
			cfg.Storage.Root,
		)
	}

	var notifier claims.Notifier = services.NopNotifier{}
	if cfg.Notify.Enabled {
		notifier = services.NewSNSNotifier(
			cfg.Notify.Key,
			cfg.Notify.Secret,
			cfg.Notify.Region,
			cfg.Notify.TopicARN,
		)
	}

	claimService := claims.NewService(listingRepo, claimRepo, notifier)

	webApp := &handlers.WebApp{
		Config:       cfg,
		DB:           db,
		Listings:     listingRepo,
		Claims:       claimRepo,
		ClaimService: claimService,
		Resolver:     resolver,
		Storage:      storage,
		Version:      version,
		Commit:       commit,
	}

	app := fiber.New(fiber.Config{
		AppName:      "ShareHub API",
		ServerHeader: "ShareHub",
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: middleware.CustomErrorHandler,
	})

	allowOrigins := cfg.Web.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Amz-Date,X-Api-Key,X-Amz-Security-Token",
	}))
	app.Use(middleware.OptionalIdentity(resolver))
	app.Use(middleware.LoggingMiddleware())

	setupRoutes(app, webApp)

	address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	slog.Info("Starting server", slog.String("address", address))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.Any("error", err))
		}
	}()

	<-c
	slog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.Any("error", err))
	}

	db.Close()

	slog.Info("Server shutdown complete")
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ShareHub API",
			"version": webApp.Version,
			"status":  "running",
		})
	})

	// Bare OPTIONS (outside a CORS preflight) succeeds with no body; actual
	// preflights are answered by the cors middleware before reaching here.
	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	mutationLimiter := middleware.NewRateLimiter(30, time.Minute)

	listings := app.Group("/listings")
	listings.Get("/", handlers.ListListings(webApp))
	listings.Get("/expired", handlers.ExpiredListings(webApp))
	listings.Get("/:id", handlers.GetListing(webApp))
	listings.Post("/", middleware.RateLimit(mutationLimiter), handlers.CreateListing(webApp))
	listings.Put("/:id", middleware.RateLimit(mutationLimiter), handlers.UpdateListing(webApp))
	listings.Delete("/:id", middleware.RateLimit(mutationLimiter), handlers.DeleteListing(webApp))
	listings.Post("/:id/claim", middleware.RateLimit(mutationLimiter), handlers.ClaimListing(webApp))

	users := app.Group("/users")
	users.Get("/:userId/listings", handlers.UserListings(webApp))
	users.Get("/:userId/claims", handlers.UserClaims(webApp))
	users.Get("/:userId/stats", handlers.UserStats(webApp))

	app.Get("/stats", handlers.Stats(webApp))
	app.Post("/upload", middleware.RateLimit(mutationLimiter), handlers.UploadImage(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not Found",
		})
	})
}
