package main

import (
	"CipherShare/config"
	"CipherShare/internal/reaper"
	"CipherShare/internal/repo"
	"CipherShare/internal/service"
	"CipherShare/internal/task"
	"CipherShare/router"
	"context"

	"golang.org/x/time/rate"
)

// main initializes services, starts the expiry reaper and runs the HTTP
// server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()

	files := repo.NewMysqlFileRepository(repo.Db)
	registry := service.NewBucketRegistry(repo.NewMysqlBucketRepository(repo.Db))

	engine := service.NewEngine(files, registry, config.AppConfig.MaxUploadSize)
	engine.Orphan = task.PublishCleanup
	service.Default = engine

	ctx := context.Background()
	expiry := reaper.New(files, registry, config.AppConfig.ReaperInterval)
	expiry.Limiter = rate.NewLimiter(rate.Limit(config.AppConfig.CleanupRate), config.AppConfig.CleanupBurst)
	go expiry.Run(ctx)

	router := router.InitRouter()

	router.Run(":8080")
}
