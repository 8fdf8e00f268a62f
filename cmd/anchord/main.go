package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/agritrace/provchain/internal/anchor/handler"
	"github.com/agritrace/provchain/internal/anchor/service"
	"github.com/agritrace/provchain/internal/health"
	"github.com/agritrace/provchain/internal/journal"
	"github.com/agritrace/provchain/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("anchord exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// ── Configuration ────────────────────────────────────────────────────────
	viper.SetConfigName("anchord")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("anchor.port", 8080)
	viper.SetDefault("anchor.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("anchor.rate_limit_rps", 20)
	viper.SetDefault("storage.backend", "ipfs")
	viper.SetDefault("ipfs.api_url", "http://localhost:5001")
	viper.SetDefault("ipfs.project_id", "")
	viper.SetDefault("ipfs.project_secret", "")
	viper.SetDefault("ipfs.timeout", "30s")
	viper.SetDefault("health.check_interval", "1m")
	viper.SetDefault("health.probe_timeout", "10s")
	viper.SetDefault("health.fail_threshold", 3)

	if err := viper.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Warn("no config file found, using defaults and env vars")
	}

	// ── Storage backend ──────────────────────────────────────────────────────
	var store storage.Gateway
	switch backend := viper.GetString("storage.backend"); backend {
	case "ipfs":
		timeout, _ := time.ParseDuration(viper.GetString("ipfs.timeout"))
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		opts := []storage.IPFSOption{storage.WithTimeout(timeout)}
		if id := viper.GetString("ipfs.project_id"); id != "" {
			opts = append(opts, storage.WithAuth(id, viper.GetString("ipfs.project_secret")))
		}
		store = storage.NewIPFSGateway(viper.GetString("ipfs.api_url"), logger, opts...)
		logger.Info("storage backend: ipfs", zap.String("api_url", viper.GetString("ipfs.api_url")))

	case "memory":
		store = storage.NewMemoryGateway()
		logger.Warn("storage backend: memory — content is lost on restart; do not use in production")

	default:
		return fmt.Errorf("unknown storage backend %q", backend)
	}

	// ── Wire up layers ───────────────────────────────────────────────────────
	auditJournal := journal.New()
	svc := service.New(store, logger)
	svc.SetJournal(auditJournal)
	anchorHandler := handler.NewAnchorHandler(svc, logger)
	journalHandler := handler.NewJournalHandler(auditJournal, logger)

	checkInterval, _ := time.ParseDuration(viper.GetString("health.check_interval"))
	probeTimeout, _ := time.ParseDuration(viper.GetString("health.probe_timeout"))
	checker := health.New(store, health.Config{
		CheckInterval: checkInterval,
		ProbeTimeout:  probeTimeout,
		FailThreshold: viper.GetInt("health.fail_threshold"),
	}, logger)
	checker.SetMetricsRecord(handler.RecordStorageProbe)

	// ── HTTP Router ──────────────────────────────────────────────────────────
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS
	corsOrigins := viper.GetStringSlice("anchor.cors_origins")
	corsConfig := cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !containsWildcard(corsOrigins),
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Request body size limit (1 MB)
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)
		c.Next()
	})

	// Per-IP rate limiting
	rps := viper.GetInt("anchor.rate_limit_rps")
	if rps > 0 {
		router.Use(handler.RateLimiter(rps, rps*2))
	}

	router.Use(handler.PrometheusMiddleware())
	router.Use(requestLogger(logger))

	// Health (public, no auth)
	router.GET("/healthz", func(c *gin.Context) {
		status := checker.Status()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	router.GET("/metrics", handler.MetricsHandler())

	// API v1
	v1 := router.Group("/api/v1")
	anchorHandler.Register(v1)
	journalHandler.Register(v1)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go checker.Start(quit)

	httpPort := viper.GetInt("anchor.port")
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", httpPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("anchord HTTP listening", zap.Int("port", httpPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP listen error", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	<-quit
	logger.Info("shutting down anchord...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("anchord stopped")
	return nil
}

// containsWildcard returns true if origins includes "*".
func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

// requestLogger returns a Gin middleware that logs each request with zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
