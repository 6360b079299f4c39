package main

import (
	"ImageHub/config"
	"ImageHub/internal/repo"
	"ImageHub/internal/storage"
	"ImageHub/internal/worker"
	"ImageHub/router"
	"context"
)

// main initializes services, starts the reclamation sweeper and the HTTP
// server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	storage.InitMinio()

	ctx := context.Background()
	go worker.RunSweeper(ctx, config.AppConfig.SweepInterval)

	router := router.InitRouter()

	router.Run(":8000")
}
