package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alisher2102/TumiTGBot/internal/channel"
	"github.com/Alisher2102/TumiTGBot/internal/config"
	"github.com/Alisher2102/TumiTGBot/internal/domain/model"
	"github.com/Alisher2102/TumiTGBot/internal/handler"
	"github.com/Alisher2102/TumiTGBot/internal/infra/db"
	infraRepo "github.com/Alisher2102/TumiTGBot/internal/infra/repository"
	"github.com/Alisher2102/TumiTGBot/internal/server"
	"github.com/Alisher2102/TumiTGBot/internal/usecase"
	"github.com/Alisher2102/TumiTGBot/internal/watcher"

	"github.com/joho/godotenv"
)

func main() {
	// .envは任意（コンテナでは環境変数を直接渡す）
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load", "err", err)
		os.Exit(1)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.ProductImage{},
		&model.ProductMessage{},
	); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	//チャンネル接続
	tg, err := channel.NewTelegram(cfg.BotToken, cfg.ChannelID)
	if err != nil {
		log.Error("telegram connect", "err", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	messageRepo := infraRepo.NewMessageGormRepository(gormDB)

	//Usecase生成
	engine := usecase.NewSyncUsecase(productRepo, messageRepo, tg, log, usecase.SyncConfig{
		MaxRetries:   cfg.MaxRetries,
		ProductDelay: cfg.ProductDelay,
		Concurrency:  cfg.Concurrency,
	}, nil)

	w := watcher.New(engine, log, cfg.CheckInterval, cfg.CrashCooldown, nil)

	//稼働確認サーバ（任意）
	if cfg.HealthAddr != "" {
		healthH := handler.NewHealthHandler(w)
		go func() {
			if err := server.Start(cfg.HealthAddr, healthH); err != nil {
				log.Error("health server", "err", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("watcher starting", "interval", cfg.CheckInterval.String(), "concurrency", cfg.Concurrency)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("watcher stopped", "err", err)
		os.Exit(1)
	}
	log.Info("watcher stopped")
}
