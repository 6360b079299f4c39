package main

import (
	"ImageHub/config"
	"ImageHub/internal/storage"
	"ImageHub/internal/worker"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config.InitConfig()
	storage.InitMinio()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("blob cleanup worker started")
	if err := worker.RunCleanupWorker(ctx); err != nil {
		log.Fatalf("blob cleanup worker stopped: %v", err)
	}
}
