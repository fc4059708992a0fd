package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/serenelion/Earth-Care-Food-Company/internal/backend"
	"github.com/serenelion/Earth-Care-Food-Company/internal/catalog"
	"github.com/serenelion/Earth-Care-Food-Company/internal/checkout"
	h "github.com/serenelion/Earth-Care-Food-Company/internal/http"
	"github.com/serenelion/Earth-Care-Food-Company/internal/session"
)

type Config struct {
	HTTPPort        string
	BrandAPIBaseURL string
	RedisAddr       string // optional catalog cache
	CheckoutMode    string // "simulated" or "backend"
	RequestTimeout  time.Duration
	BackendTimeout  time.Duration
	CaptureDelay    time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BrandAPIBaseURL: getEnv("BRAND_API_BASE_URL", "http://localhost:8000/api"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		CheckoutMode:    getEnv("CHECKOUT_MODE", "simulated"),
		RequestTimeout:  30 * time.Second,
		BackendTimeout:  15 * time.Second,
		CaptureDelay:    2 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	brand := backend.NewClient(cfg.BrandAPIBaseURL, cfg.BackendTimeout, log)

	var cache catalog.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		cache = catalog.NewRedisCache(rdb)
		log.WithField("addr", cfg.RedisAddr).Info("catalog cache enabled")
	}
	accessor := catalog.NewAccessor(brand, cache, log)

	capture := checkout.SimulatedCapture(cfg.CaptureDelay)
	if cfg.CheckoutMode == "backend" {
		capture = checkout.BackendCapture(brand)
	}

	sessions := session.NewManager(brand, capture, log)
	defer sessions.Close()

	router := h.NewRouter(sessions, accessor, brand, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}
