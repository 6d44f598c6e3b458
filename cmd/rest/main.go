package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"haskify-be/internal/bootstrap"
	"haskify-be/internal/config"
	"haskify-be/internal/server"
	"haskify-be/internal/tracer"
	"haskify-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	cfg := config.Load()
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else if cfg.App.Environment == "production" {
		log.Panic("DB_CONNECTION_STRING is required in production")
	}

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 3. Start Background Services
	go container.WebSocketHub.Run(ctx)

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start tutor turn consumer: %v", err)
	}

	if err := container.SweeperService.Start(); err != nil {
		log.Panicf("Unable to start expiry sweeper: %v", err)
	}
	defer container.SweeperService.Stop()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
