package main

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/AINewsTracker/internal/config"
	"github.com/LJTian/AINewsTracker/internal/scheduler"
	"github.com/LJTian/AINewsTracker/internal/storage"
)

// 只执行一轮追踪后退出的命令行入口，适合 cron/CI 定时调用。
// 不配 POSTGRES_DSN 时完全不碰数据库，日报只写到输出目录。
func main() {
	cfg := config.Load()

	var store *storage.Store
	if cfg.PostgresDSN != "" {
		s, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("init store failed: %v", err)
		}
		store = s
	}

	pipeline, err := scheduler.NewPipeline(cfg, store)
	if err != nil {
		log.Fatalf("init pipeline failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := pipeline.Run(ctx); err != nil {
		log.Fatalf("track job failed: %v", err)
	}
}
