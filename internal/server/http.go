package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	attachservice "github.com/sitedesk/inspection-backend/internal/attachment/service"
	"github.com/sitedesk/inspection-backend/internal/conf"
	"github.com/sitedesk/inspection-backend/internal/pkg/logger"
	siteservice "github.com/sitedesk/inspection-backend/internal/site/service"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	siteService *siteservice.SiteService,
	attachService *attachservice.AttachmentService,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log))

	// Non-POST requests to the upload route must get 405, not 404.
	router.HandleMethodNotAllowed = true

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API routes
	api := router.Group("/api/v1")
	siteService.RegisterRoutes(api)
	attachService.RegisterRoutes(api)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
