package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/christpg03/mine-bot/internal/bot"
	"github.com/christpg03/mine-bot/internal/config"
	"github.com/christpg03/mine-bot/internal/crypto"
	"github.com/christpg03/mine-bot/internal/db"
	apihttp "github.com/christpg03/mine-bot/internal/http"
	"github.com/christpg03/mine-bot/internal/redmine"
	"github.com/christpg03/mine-bot/internal/repository"
	"github.com/christpg03/mine-bot/internal/service"
)

// redisPinger adapta redis.Client al contrato Pinger del paquete http.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Init(ctx, pool); err != nil {
		logger.Fatal("db schema init", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	teamRepo := repository.NewPgTeamRepository(pool)
	dailyRepo := repository.NewPgDailyRepository(pool)

	cipher, err := crypto.NewTokenCipher(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("encryption key", zap.Error(err))
	}

	factory := redmine.NewFactory(cfg.RedmineURL, logger)

	var (
		projectCache service.ProjectCache
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
			redisClient = nil
		} else {
			projectCache = service.NewRedisProjectCache(redisClient, time.Duration(cfg.ProjectCacheTTLMinutes)*time.Minute)
		}
		cancel()
	}

	userSvc := service.NewUserService(logger, userRepo, cipher)
	teamSvc := service.NewTeamService(logger, teamRepo, userSvc, factory, projectCache)
	dailySvc := service.NewDailyService(logger, dailyRepo, teamRepo, userSvc, factory,
		time.Duration(cfg.RegisterWindowMinutes)*time.Minute)

	var cachePinger apihttp.Pinger
	if redisClient != nil {
		cachePinger = redisPinger{client: redisClient}
	}
	statusHandler := apihttp.NewStatusHandler(logger, pool, cachePinger, userRepo, teamRepo, dailyRepo)
	router := apihttp.NewRouter(logger, statusHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting ops server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ops server error", zap.Error(err))
		}
	}()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram connect", zap.Error(err))
	}
	api.Debug = cfg.BotDebug

	b := bot.New(api, logger, userSvc, teamSvc, dailySvc)
	if err := b.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("bot stopped with error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("ops server shutdown", zap.Error(err))
	}
}
