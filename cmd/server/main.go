package main

import (
	"net/http"

	"formbase-api/config"
	"formbase-api/internal/archive"
	"formbase-api/internal/database"
	"formbase-api/internal/form"
	"formbase-api/internal/logger"
	"formbase-api/internal/logs"
	"formbase-api/internal/metrics"
	"formbase-api/internal/middlewares"
	"formbase-api/internal/stats"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	models := append(database.Models(), form.Models()...)
	models = append(models, &logs.SystemLog{})
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	metrics.Register()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(), metrics.Middleware(cfg.ServiceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	auth := middlewares.AuthMiddleware(cfg.JWTSecret)
	logService := &logs.LogService{DB: db}

	database.RegisterRoutes(r, &database.DatabaseService{DB: db}, logService, auth)
	form.RegisterRoutes(r, &form.FormService{DB: db}, logService, auth)
	archive.RegisterRoutes(r, &archive.ArchiveService{DB: db}, logService, auth)
	stats.RegisterRoutes(r, &stats.StatsService{DB: db}, auth)
	logs.RegisterRoutes(r, logService, auth)

	log.Info("Starting server", zap.String("port", cfg.Port))
	if err := r.Run("0.0.0.0:" + cfg.Port); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
