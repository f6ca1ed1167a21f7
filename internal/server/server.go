package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/config"
	"fleetwatch/internal/handler"
	"fleetwatch/internal/metrics"
	"fleetwatch/internal/middleware"
	"fleetwatch/internal/store"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	config  *config.Config

	db      *gorm.DB
	redis   *redis.Client
	manager *alert.Manager
	engine  handler.CycleRunner
	metrics *metrics.Set
	wsHub   *handler.WSHub
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, manager *alert.Manager, engine handler.CycleRunner, metricSet *metrics.Set, wsHub *handler.WSHub) *Server {
	return &Server{
		config:  cfg,
		db:      db,
		redis:   redisClient,
		manager: manager,
		engine:  engine,
		metrics: metricSet,
		wsHub:   wsHub,
	}
}

// Setup initializes routes and handlers
func (s *Server) Setup() {
	alertStore := store.NewAlertStore(s.db)
	alertCache := store.NewAlertCache(s.redis)

	alertHandler := handler.NewAlertHandler(alertStore, alertCache, s.manager)
	engineHandler := handler.NewEngineHandler(s.engine)
	wsHandler := handler.NewWSHandler(s.wsHub)

	go s.wsHub.Run()
	log.Println("[Server] WebSocket hub started")

	s.router = gin.Default()

	// CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.router.GET("/ws", wsHandler.Serve)

	api := s.router.Group("/api/v1")
	api.Use(middleware.Auth(s.config.JWTSecret))
	alertHandler.RegisterRoutes(api)
	engineHandler.RegisterRoutes(api)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.APIPort)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	log.Printf("[Server] listening on %s", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown() {
	if s.httpSrv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		log.Printf("[Server] shutdown: %v", err)
	}
}
