package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/config"
	"github.com/aman-churiwal/devtools-profiler/internal/handler"
	"github.com/aman-churiwal/devtools-profiler/internal/healthcheck"
	"github.com/aman-churiwal/devtools-profiler/internal/middleware"
	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/aman-churiwal/devtools-profiler/internal/ratelimit"
	"github.com/aman-churiwal/devtools-profiler/internal/repository"
	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/aman-churiwal/devtools-profiler/internal/storage"
	"github.com/gin-gonic/gin"
)

const serverSoftware = "devtools-storefront"

type Server struct {
	router     *gin.Engine
	config     *config.Config
	redis      *storage.RedisClient
	db         *storage.Database
	httpServer *http.Server

	profiler *profiler.Profiler
	fileLog  *profiler.FileLog
	auth     *service.AuthService
	health   *healthcheck.Checker

	profilerHandler *handler.ProfilerHandler
	authHandler     *handler.AuthHandler
	catalogHandler  *handler.CatalogHandler
	systemHandler   *handler.SystemHandler
}

// New wires the storefront and the profiler. redis may be nil, in which case
// settings are read from the database on every request.
func New(cfg *config.Config, db *storage.Database, redis *storage.RedisClient) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.SetHTMLTemplate(handler.Templates())

	var cache service.Cache
	deps := []healthcheck.Dependency{{Name: "database", Pinger: db, Required: true}}
	if redis != nil {
		cache = service.NewGuardedCache(redis, nil)
		deps = append(deps, healthcheck.Dependency{Name: "redis", Pinger: redis})
	}
	checker := healthcheck.NewChecker(healthcheck.Config{Dependencies: deps})

	settingsService := service.NewSettingsService(repository.NewConfigRepository(db), cache, cfg.Profiler.SettingsCacheTTL)
	adminService := service.NewProfilerAdminService(settingsService, service.NewKeyGenerator(nil), nil)
	authService := service.NewAuthService(repository.NewAuthRepository(db), cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)
	catalogService := service.NewCatalogService(repository.NewProductRepository(db))

	cookies := profiler.NewCookieManager()
	fileLog := openFileLog(cfg.Profiler.LogFile)

	s := &Server{
		router:          router,
		config:          cfg,
		redis:           redis,
		db:              db,
		profiler:        newProfiler(cfg, settingsService, cookies, fileLog),
		fileLog:         fileLog,
		auth:            authService,
		profilerHandler: handler.NewProfilerHandler(adminService, cookies),
		authHandler:     handler.NewAuthHandler(authService),
		catalogHandler:  handler.NewCatalogHandler(catalogService),
		systemHandler:   handler.NewSystemHandler(profiler.Version, checker),
		health:          checker,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func newProfiler(cfg *config.Config, settingsService *service.SettingsService, cookies *profiler.CookieManager, fileLog *profiler.FileLog) *profiler.Profiler {
	appState := profiler.StaticMode(cfg.Server.Mode)
	memory := profiler.RuntimeMemory{}

	assets := profiler.NewAssetResolver(profiler.AssetConfig{
		BaseURL: cfg.Profiler.AssetBaseURL,
		Theme:   cfg.Profiler.Theme,
		Locales: cfg.Profiler.Locales,
	})

	return profiler.New(profiler.Config{
		Settings: settingsService,
		Gate:     profiler.NewGate(appState, profiler.NewKeyValidator(cookies)),
		Collector: profiler.NewCollector(profiler.CollectorConfig{
			Memory:         memory,
			AppState:       appState,
			ServerSoftware: serverSoftware,
		}),
		Injector: profiler.NewInjector(assets, cookies),
		Memory:   memory,
		FileLog:  fileLog,
	})
}

func openFileLog(path string) *profiler.FileLog {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		log.Printf("Profiler log disabled, cannot create %s: %v", filepath.Dir(path), err)
		return nil
	}

	fileLog, err := profiler.NewFileLog(path)
	if err != nil {
		log.Printf("Profiler log disabled: %v", err)
		return nil
	}

	return fileLog
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.Profiler(s.profiler, s.config.Profiler.MaxBodyBytes))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.systemHandler.Health)

	if base := s.config.Profiler.AssetBaseURL; strings.HasPrefix(base, "/") && s.config.Profiler.AssetDir != "" {
		s.router.Static(base, s.config.Profiler.AssetDir)
	}

	s.router.GET("/", s.catalogHandler.Page)
	s.router.GET("/catalog", s.catalogHandler.Page)

	api := s.router.Group("/api")
	{
		api.GET("/products", s.catalogHandler.List)
		api.GET("/products/:sku", s.catalogHandler.Get)
		api.POST("/products", middleware.RequireAdmin(s.auth), s.catalogHandler.Create)
	}

	login := []gin.HandlerFunc{s.authHandler.Login}
	if s.redis != nil && s.config.Auth.LoginAttemptsPerMinute > 0 {
		limiter := ratelimit.NewFixedWindow(s.redis, "login", s.config.Auth.LoginAttemptsPerMinute, time.Minute)
		login = append([]gin.HandlerFunc{middleware.RateLimit(limiter)}, login...)
	}
	s.router.POST("/admin/auth/login", login...)

	admin := s.router.Group("/admin/profiler", middleware.RequireAdmin(s.auth))
	{
		admin.GET("/status", s.profilerHandler.Status)
		admin.POST("/enable", s.profilerHandler.Enable)
		admin.POST("/disable", s.profilerHandler.Disable)
		admin.POST("/api-key", s.profilerHandler.GenerateAPIKey)
	}
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	s.health.Start()

	log.Printf("Starting storefront on %s", addr)
	log.Printf("Environment: %s, mode: %s", s.config.Server.Environment, s.config.Server.Mode)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	s.health.Stop()

	if err := s.fileLog.Close(); err != nil {
		log.Printf("Failed to flush profiler log: %v", err)
	}

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
