package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/AINewsTracker/internal/api"
	"github.com/LJTian/AINewsTracker/internal/config"
	"github.com/LJTian/AINewsTracker/internal/leaderboard"
	"github.com/LJTian/AINewsTracker/internal/scheduler"
	"github.com/LJTian/AINewsTracker/internal/storage"
)

func main() {
	cfg := config.Load()

	// API 服务需要数据库；没配 DSN 时退回本地默认值
	dsn := cfg.PostgresDSN
	if dsn == "" {
		dsn = config.DefaultPostgresDSN
	}
	store, err := storage.NewStore(dsn, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	pipeline, err := scheduler.NewPipeline(cfg, store)
	if err != nil {
		log.Fatalf("init pipeline failed: %v", err)
	}
	sched, err := scheduler.New(cfg.CronSpec, pipeline)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	sched.Start()

	r := gin.Default()
	apiServer := api.NewServer(store, leaderboard.NewCache(store.Redis, 0), sched.RunOnce)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
