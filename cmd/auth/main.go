package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/auth_service/internal/config"
	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/httpserver"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/metrics"
	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/token"
)

func main() {
	cfg := config.Load()
	cfg.Validate()

	logger := logging.New(cfg.LogLevel, cfg.ServiceName)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db handle error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}

	var revocations service.RevocationStore = gormRepo
	if cfg.RevocationBackend == "redis" {
		initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		rdb, err := config.InitRedis(initCtx, cfg)
		cancel()
		if err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		defer rdb.Close()
		revocations = repo.NewRedisRevocations(rdb, cfg.ServiceName)
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hasher := hash.New(cfg.PasswordHasher, cfg.BcryptCost)

	authSvc := &service.AuthService{
		Users:       gormRepo,
		Revocations: revocations,
		Codec:       token.NewCodec(cfg.JWTSecret),
		Hasher:      hasher,
		Events:      publisher,
		Metrics:     m,
	}
	cookies := httpserver.CookieConfig{Secure: cfg.CookieSecure}

	e.HTTPErrorHandler = httpserver.NewErrorHandler(cookies, nil)
	middleware.Setup(e, middleware.Options{
		Logger:          logger,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc, Cookies: cookies},
		UsersHandler: &httpserver.UsersHTTP{Svc: &service.UserService{Users: gormRepo, Hasher: hasher, Events: publisher}},
		AdminHandler: &httpserver.AdminHTTP{Svc: authSvc},
		Auth:         middleware.NewAuth(authSvc),
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ready:        sqlDB.PingContext,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	janitor := &service.Janitor{
		Revocations: revocations,
		Interval:    cfg.CleanupInterval,
		Metrics:     m,
		Logger:      logger,
	}
	go janitor.Run(ctx)

	go func() {
		logger.Info("server_starting", "addr", cfg.HTTPAddr, "revocation_backend", cfg.RevocationBackend)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("db close: %v", err)
	}
}
