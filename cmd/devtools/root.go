package main

import (
	"fmt"
	"log"

	"github.com/aman-churiwal/devtools-profiler/internal/config"
	"github.com/aman-churiwal/devtools-profiler/internal/repository"
	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/aman-churiwal/devtools-profiler/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"
)

var (
	cfgFile string
	verbose bool

	cfg   *config.Config
	db    *storage.Database
	redis *storage.RedisClient
)

var rootCmd = &cobra.Command{
	Use:   "devtools",
	Short: "Manage the storefront request profiler",
	Long: `devtools changes the request profiler's stored configuration: turn it on
or off, inspect its status and manage the API key browsers use to unlock it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()

		if !verbose {
			log.SetOutput(cmd.ErrOrStderr())
			log.SetFlags(0)
		}

		redis = nil

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := logger.Silent
		if verbose {
			level = logger.Info
		}

		db, err = storage.NewDatabase(cfg.Database.Driver, cfg.Database.DSN, level)
		if err != nil {
			return err
		}

		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		// The storefront caches settings in redis, connect so writes invalidate it
		if cfg.Redis.Enabled {
			redis, err = storage.NewRedis(cfg.Redis.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if redis != nil {
			redis.Close()
		}
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "config file (json, yaml or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log SQL and config loading")

	rootCmd.AddCommand(enableCmd, disableCmd, statusCmd, generateAPIKeyCmd, adminCmd)
}

func adminService() *service.ProfilerAdminService {
	var cache service.Cache
	if redis != nil {
		cache = service.NewGuardedCache(redis, nil)
	}

	settingsService := service.NewSettingsService(repository.NewConfigRepository(db), cache, cfg.Profiler.SettingsCacheTTL)
	return service.NewProfilerAdminService(settingsService, nil, nil)
}
