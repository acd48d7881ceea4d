package main

import (
	"CipherShare/config"
	"CipherShare/internal/repo"
	"CipherShare/internal/service"
	"CipherShare/internal/worker"
	"context"
	"log"
	"os/signal"
	"syscall"
)

// main runs the orphan-cleanup worker.
func main() {
	config.InitConfig()
	repo.InitMysql()

	registry := service.NewBucketRegistry(repo.NewMysqlBucketRepository(repo.Db))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := worker.RunCleanupWorker(ctx, registry); err != nil {
		log.Fatalf("cleanup worker exited: %v", err)
	}
}
