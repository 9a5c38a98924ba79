package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sharehub/sharehub/sharehub"
	"github.com/sharehub/sharehub/sharehub/database"
	"github.com/sharehub/sharehub/sharehub/logger"
	"github.com/sharehub/sharehub/sharehub/migration"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler("ShareHub-Migrate")))

	var (
		configPath = flag.String("config", "config.toml", "path to config")
		mongoURI   = flag.String("mongo-uri", "mongodb://localhost:27017", "legacy MongoDB connection URI")
		mongoDB    = flag.String("mongo-db", "sharehub", "legacy MongoDB database name")
		batchSize  = flag.Int("batch-size", 500, "insert batch size")
	)
	flag.Parse()

	cfg, err := sharehub.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

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
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.Any("error", err))
		os.Exit(1)
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	defer connectCancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		slog.Error("Failed to connect to MongoDB", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Warn("MongoDB disconnect failed", slog.Any("error", err))
		}
	}()

	if err := client.Ping(connectCtx, nil); err != nil {
		slog.Error("MongoDB ping failed", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := migration.NewMigrator(db.BunDB(), client, *mongoDB)
	migrator.SetBatchSize(*batchSize)

	if err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Migration completed successfully")
}
