package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	attachbiz "github.com/sitedesk/inspection-backend/internal/attachment/biz"
	attachdata "github.com/sitedesk/inspection-backend/internal/attachment/data"
	attachservice "github.com/sitedesk/inspection-backend/internal/attachment/service"
	"github.com/sitedesk/inspection-backend/internal/conf"
	"github.com/sitedesk/inspection-backend/internal/data"
	"github.com/sitedesk/inspection-backend/internal/pkg/logger"
	"github.com/sitedesk/inspection-backend/internal/server"
	sitebiz "github.com/sitedesk/inspection-backend/internal/site/biz"
	sitedata "github.com/sitedesk/inspection-backend/internal/site/data"
	siteservice "github.com/sitedesk/inspection-backend/internal/site/service"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Initialize repositories
	attachRepo := attachdata.NewAttachmentRepo(d.DB)
	objectStore := attachdata.NewMinIOObjectStore(d.MinIOClient)
	siteRepo := sitedata.NewSiteRepo(d.DB)
	siteCache := sitedata.NewSiteCache(d.RedisClient, log)

	// Initialize use cases
	attachUseCase := attachbiz.NewAttachmentUseCase(attachRepo, objectStore, log)
	siteUseCase := sitebiz.NewSiteUseCase(siteRepo, siteCache, attachUseCase, log)

	// Initialize services
	attachService := attachservice.NewAttachmentService(attachUseCase, log.Logger)
	siteService := siteservice.NewSiteService(siteUseCase, log.Logger)

	// Initialize server
	httpServer := server.NewHTTPServer(config, log, siteService, attachService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
