package api

import (
	"context"
	"fmt"
	"strings"

	_ "clientadmin/docs"
	"clientadmin/internal/app/backend"
	"clientadmin/internal/app/config"
	"clientadmin/internal/app/handler"
	"clientadmin/internal/app/metrics"
	"clientadmin/internal/app/middleware"
	"clientadmin/internal/app/notify"
	"clientadmin/internal/app/redis"
	"clientadmin/internal/app/repository"
	"clientadmin/internal/app/state"
	"clientadmin/internal/app/storage"
	"clientadmin/internal/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// StartServer builds the application from config and serves until ctx is cancelled.
func StartServer(ctx context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogging(cfg.Log)

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	return app.RunApp(ctx)
}

// NewApp connects the optional infrastructure and assembles the router.
func NewApp(ctx context.Context, cfg *config.Config) (*pkg.Application, error) {
	m := metrics.New(prometheus.DefaultRegisterer)
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		backend.WithToken(cfg.Backend.Token),
		backend.WithRecorder(m),
	)

	var (
		sinks   []notify.Sink
		closers []func() error
		audit   *repository.Repository
	)
	if cfg.Audit.DSN != "" {
		repo, err := repository.New(cfg.Audit.DSN)
		if err != nil {
			return nil, fmt.Errorf("audit repository: %w", err)
		}
		audit = repo
		sinks = append(sinks, repo)
		logrus.Info("notification audit log enabled")
	}

	feed := notify.NewFeed(cfg.Notify.Capacity, sinks...)
	store := state.NewStore(state.BackendResources(client), feed, m)

	var blacklist middleware.Blacklist
	if cfg.Auth.Enabled {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		blacklist = redisClient
		closers = append(closers, redisClient.Close)
	} else {
		logrus.Warn("auth disabled, every request runs as the local operator")
	}
	auth := middleware.NewAuthMiddleware(blacklist, cfg)

	h := handler.NewHandler(store, feed, auth, client)
	if audit != nil {
		h.Audit = audit
	}
	if cfg.MinIO.Enabled() {
		reports, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		h.Reports = reports
	}

	router := newRouter(cfg)
	h.RegisterRoutes(router)

	return pkg.NewApp(cfg, router, store, closers...), nil
}

func newRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
	}))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func setupLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
