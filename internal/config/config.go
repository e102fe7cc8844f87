package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	BotToken  string // Bot APIトークン
	ChannelID string // 投稿先チャンネル（数値chat_idか@名前）

	CheckInterval time.Duration // サイクル間隔
	ProductDelay  time.Duration // 商品間の固定ウェイト
	Concurrency   int           // 同時処理する商品数（既定1）
	MaxRetries    int           // スロットル時の最大試行回数
	CrashCooldown time.Duration // ループ再起動までのクールダウン

	HealthAddr string // /healthz用アドレス（空なら起動しない）
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		BotToken:  os.Getenv("BOT_TOKEN"),
		ChannelID: os.Getenv("CHANNEL_ID"),

		CheckInterval: durenv("CHECK_INTERVAL_SEC", 5) * time.Second,
		ProductDelay:  durenv("PRODUCT_DELAY_MS", 1500) * time.Millisecond,
		Concurrency:   intenv("CONCURRENT_LIMIT", 1),
		MaxRetries:    intenv("MAX_RETRIES", 3),
		CrashCooldown: durenv("CRASH_COOLDOWN_SEC", 10) * time.Second,

		HealthAddr: os.Getenv("HEALTH_ADDR"),
	}

	//必須チェック
	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.ChannelID == "" {
		return Config{}, fmt.Errorf("CHANNEL_ID is required")
	}

	if cfg.CheckInterval <= 0 {
		return Config{}, fmt.Errorf("CHECK_INTERVAL_SEC must be positive")
	}
	if cfg.Concurrency <= 0 {
		return Config{}, fmt.Errorf("CONCURRENT_LIMIT must be positive")
	}
	if cfg.MaxRetries <= 0 {
		return Config{}, fmt.Errorf("MAX_RETRIES must be positive")
	}

	return cfg, nil
}

func intenv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func durenv(key string, def int) time.Duration {
	return time.Duration(intenv(key, def))
}
