package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/config"
	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/aman-churiwal/devtools-profiler/internal/repository"
	"github.com/aman-churiwal/devtools-profiler/internal/server"
	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/aman-churiwal/devtools-profiler/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	flag.Parse()

	// Load env if it exists
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := storage.NewDatabase(cfg.Database.Driver, cfg.Database.DSN, storage.ParseLogLevel(cfg.Database.LogLevel), profiler.NewSQLProfiler())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if cfg.Database.Seed {
		created, err := service.NewCatalogService(repository.NewProductRepository(db)).Seed(context.Background())
		if err != nil {
			log.Fatalf("Failed to seed catalog: %v", err)
		}
		if created > 0 {
			log.Printf("Seeded %d demo products", created)
		}
	}

	var redis *storage.RedisClient
	if cfg.Redis.Enabled {
		redis, err = storage.NewRedis(cfg.Redis.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redis.Close()

		log.Println("Connected to redis successfully")
	}

	srv := server.New(cfg, db, redis)

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
