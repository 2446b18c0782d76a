package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhima/mysql-crud/internal/api/handlers"
	"github.com/dhima/mysql-crud/internal/api/middleware"
	"github.com/dhima/mysql-crud/internal/database"
	"github.com/dhima/mysql-crud/internal/logging"
	"github.com/dhima/mysql-crud/internal/records"
	"github.com/dhima/mysql-crud/pkg/config"
	"github.com/dhima/mysql-crud/platform/events"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Server orchestrates HTTP routing and dependencies for the API service.
type Server struct {
	config    config.App
	logger    logging.Logger
	router    *gin.Engine
	db        *database.Database
	publisher events.Sink

	recordService *records.Service
}

// NewServer wires the API dependencies together.
func NewServer() *Server {
	cfg := config.FromEnv()

	logger, err := logging.New(logging.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		File:        cfg.LogFile,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	db := database.New(database.ConfigFromApp(cfg), logger)
	if err := db.Connect(context.Background()); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err), zap.Stringer("database", db.Config()))
	}

	return NewServerWith(cfg, logger, db)
}

// NewServerWith builds a server around an already connected database.
func NewServerWith(cfg config.App, logger logging.Logger, db *database.Database) *Server {
	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	publisher := events.NewSink(cfg.Brokers(), cfg.KafkaTopic, logging.Zap(logger))

	server := &Server{
		config:        cfg,
		logger:        logger,
		db:            db,
		publisher:     publisher,
		recordService: records.NewService(db, publisher, logger, cfg.AllowedTables),
	}

	server.setupRouter()
	return server
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with middleware and routes.
func (s *Server) setupRouter() {
	router := gin.New()

	zapLogger := logging.Zap(s.logger)

	// Global middleware (order matters!)
	// 1. Recovery - must be first to catch panics from other middleware
	router.Use(ginzap.RecoveryWithZap(zapLogger, true))

	// 2. Request ID - inject unique ID for tracing
	router.Use(middleware.RequestID())

	// 3. Logging - log all requests with structured fields
	router.Use(ginzap.Ginzap(zapLogger, time.RFC3339, true))

	// 4. CORS - handle cross-origin requests
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(s.config.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Health and metrics endpoints (no /api/v1 prefix)
	router.GET("/health", handlers.NewHealthHandler(s.logger, s.db).Health)
	router.GET("/metrics", handlers.NewMetricsHandler(s.logger, s.db).Metrics)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		recordHandler := handlers.NewRecordHandler(s.logger, s.recordService)
		tables := v1.Group("/tables")
		{
			tables.GET("/:table", recordHandler.ListRecords)
			tables.POST("/:table", recordHandler.CreateRecord)
			tables.PUT("/:table", recordHandler.UpdateRecords)
			tables.DELETE("/:table", recordHandler.DeleteRecords)
		}
	}

	s.router = router
}

// Serve starts the HTTP server with graceful shutdown support.
func (s *Server) Serve() error {
	addr := ":" + s.config.APIPort
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting API server",
			zap.String("address", addr),
			zap.String("environment", s.config.Environment),
			zap.String("log_level", s.config.LogLevel),
			zap.Stringer("database", s.db.Config()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-quit
	s.logger.Info("shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	s.Close()

	// Flush logger before exit
	if err := s.logger.Sync(); err != nil {
		// Ignore sync errors on stdout/stderr
		if err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: invalid argument" {
			return err
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Close releases the publisher and the database handle.
func (s *Server) Close() {
	if err := s.publisher.Close(); err != nil {
		s.logger.Error("failed to close event publisher", zap.Error(err))
	}
	if _, err := s.db.Disconnect(); err != nil {
		s.logger.Error("failed to close database connection", zap.Error(err))
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
