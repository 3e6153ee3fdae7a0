package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/biletnam/ticket-service/internal/api"
	"github.com/biletnam/ticket-service/internal/api/handler"
	custommiddleware "github.com/biletnam/ticket-service/internal/api/middleware"
	"github.com/biletnam/ticket-service/internal/application"
	"github.com/biletnam/ticket-service/internal/config"
	"github.com/biletnam/ticket-service/internal/domain/customer"
	"github.com/biletnam/ticket-service/internal/domain/hold"
	"github.com/biletnam/ticket-service/internal/domain/venue"
	"github.com/biletnam/ticket-service/internal/infrastructure/memory"
	"github.com/biletnam/ticket-service/internal/infrastructure/postgres"
	redisinfra "github.com/biletnam/ticket-service/internal/infrastructure/redis"
	"github.com/biletnam/ticket-service/internal/pkg/logger"
	"github.com/biletnam/ticket-service/internal/pkg/metrics"
	"github.com/biletnam/ticket-service/internal/worker"
)

const (
	refreshInterval = 15 * time.Second
	refreshCacheTTL = 30 * time.Second
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	env := os.Getenv("APP_ENV")
	logger.Set(logger.NewLogger(env))
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// リポジトリ構築（postgres または memory）
	var (
		venueRepo    venue.Repository
		customerRepo customer.Repository
		holdRepo     hold.Repository
	)

	switch cfg.Storage.Backend {
	case "memory":
		logger.Info("インメモリストレージで起動")
		venueRepo = memory.NewVenueRepository()
		customerRepo = memory.NewCustomerRepository()
		holdRepo = memory.NewHoldRepository()
	default:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			logger.Fatal("データベース接続に失敗", zap.Error(err))
		}
		defer db.Close()

		if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
			if err := postgres.RunMigrations(db.DB, path); err != nil {
				logger.Fatal("マイグレーション実行に失敗", zap.Error(err))
			}
		}

		venueRepo = postgres.NewVenueRepository(db)
		customerRepo = postgres.NewCustomerRepository(db)
		holdRepo = postgres.NewHoldRepository(db)
	}

	// Redis接続（任意。接続できない場合はロック・キャッシュなしで続行）
	var (
		lockManager *redisinfra.LockManager
		availCache  *redisinfra.AvailabilityCache
	)
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis接続に失敗。分散ロックとキャッシュなしで続行", zap.Error(err))
	} else {
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		availCache = redisinfra.NewAvailabilityCache(redisClient)
	}

	// 会場の初期化
	ctx := context.Background()
	v, err := ensureVenue(ctx, venueRepo, &cfg.Venue)
	if err != nil {
		logger.Fatal("会場の初期化に失敗", zap.Error(err))
	}
	logger.Info("会場を準備",
		zap.String("venue_id", v.ID),
		zap.String("name", v.Name),
		zap.Int("total_seats", v.TotalSeats),
	)

	// サービスとハンドラー
	ticketService := application.NewTicketService(
		venueRepo, customerRepo, holdRepo, lockManager, availCache, v.ID,
	)
	ticketHandler := handler.NewTicketHandler(ticketService)
	healthHandler := handler.NewHealthHandler()

	// 空席数リフレッシャー
	var refreshCache worker.AvailabilityCache
	if availCache != nil {
		refreshCache = availCache
	}
	refresher := worker.NewAvailabilityRefresher(
		venueRepo, refreshCache, v.ID, refreshInterval, refreshCacheTTL,
	)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go refresher.Start(workerCtx)

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.GET("/venue/availability", ticketHandler.Availability)
	v1.POST("/holds", ticketHandler.CreateHold)
	v1.GET("/holds", ticketHandler.GetCustomerHolds)
	v1.GET("/holds/:id", ticketHandler.GetHold)
	v1.POST("/holds/:id/reserve", ticketHandler.Reserve)
	v1.POST("/holds/:id/release", ticketHandler.Release)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	cancelWorker()
	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

// ensureVenue は設定された会場を取得し、存在しなければ作成する
func ensureVenue(ctx context.Context, repo venue.Repository, vc *config.VenueConfig) (*venue.Venue, error) {
	if vc.ID != "" {
		return repo.GetByID(ctx, vc.ID)
	}

	if v, err := repo.GetByName(ctx, vc.Name); err == nil {
		return v, nil
	} else if !errors.Is(err, venue.ErrVenueNotFound) {
		return nil, err
	}

	v := venue.NewVenue(vc.Name, vc.TotalSeats)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, v); err != nil {
		// 並行起動との作成競合時は登録済みの会場を使う
		if errors.Is(err, venue.ErrVenueAlreadyExists) {
			return repo.GetByName(ctx, vc.Name)
		}
		return nil, err
	}
	return v, nil
}
