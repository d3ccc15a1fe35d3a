package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	"github.com/demandcast/backend/internal/api"
	"github.com/demandcast/backend/internal/config"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/internal/forecast"
	"github.com/demandcast/backend/internal/models"
	"github.com/demandcast/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Resolve config relative to the executable
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "demandcast.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Advanced.LogLevel)
	slog.SetDefault(logger)

	embeddedMode := web.HasEmbeddedFiles()

	// Forecast model parameters come from an editable YAML file
	params, err := config.LoadModelParams(cfg.Storage.ModelParamsPath)
	if err != nil {
		logger.Error("invalid model parameters", "path", cfg.Storage.ModelParamsPath, "error", err)
		os.Exit(1)
	}

	// Built-in dataset is optional; without it the server runs upload-only
	var defaultDS *models.Dataset
	defaultDS, err = dataset.LoadDefaultDataset(cfg.Storage.DefaultDatasetPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("default dataset not found, running in upload-only mode",
				"path", cfg.Storage.DefaultDatasetPath)
		} else {
			logger.Error("failed to load default dataset", "error", err)
			os.Exit(1)
		}
		defaultDS = nil
	} else {
		logger.Info("default dataset loaded",
			"path", cfg.Storage.DefaultDatasetPath,
			"rows", len(defaultDS.Rows),
			"products", len(defaultDS.Products()))
	}

	cache := dataset.NewCache(cfg.Processing.MaxCachedDatasets, logger)
	defer cache.Close()

	engine := forecast.NewEngine(params, cfg.Processing.ForecastCacheSize, logger)

	// Scheduled eviction of idle uploaded datasets
	scheduler := cron.New()
	datasetTimeout := time.Duration(cfg.Processing.DatasetTimeoutMinutes) * time.Minute
	if _, err := scheduler.AddFunc(cfg.Processing.CleanupSchedule, func() {
		if n := cache.CleanupExpired(datasetTimeout); n > 0 {
			logger.Info("evicted idle datasets", "count", n)
		}
	}); err != nil {
		logger.Error("invalid cleanup schedule", "schedule", cfg.Processing.CleanupSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	duckOpts := dataset.DuckStoreOptions{
		Threads:     cfg.Advanced.DuckDBThreads,
		MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Cache:          cache,
		Engine:         engine,
		DefaultDataset: defaultDS,
		TempDir:        cfg.Storage.TempDirectory,
		DuckOpts:       duckOpts,
		AllowedTypes:   cfg.Security.AllowedFileTypes,
		AllowDeletion:  cfg.Security.AllowDatasetDeletion,
		Version:        Version,
		Logger:         logger,
	})

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e)

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Uploads and report downloads can legitimately run long
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/api/datasets") ||
				strings.Contains(path, "/report") ||
				strings.Contains(path, "/csv")
		},
		ErrorMessage: "Request timeout - forecast took too long",
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, handlers)

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", "error", err)
		} else {
			logger.Info("serving embedded frontend from binary")
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	mode := "API only"
	if embeddedMode {
		mode = "Embedded frontend"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Demand Forecast Server                           ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.Storage.DataDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	e.Logger.Fatal(e.StartServer(s))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
