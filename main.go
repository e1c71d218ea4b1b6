package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"csfloat-trader/internal/api"
	"csfloat-trader/internal/config"
	"csfloat-trader/internal/database"
	"csfloat-trader/internal/logger"
	"csfloat-trader/internal/services/csfloat"
	"csfloat-trader/internal/services/tracker"
)

const trackerOff = "off"

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}

	// "csfloat-trader token" prints a day-long bearer token for the local API.
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if cfg.Server.JWTSecret == "" {
			log.Fatal("JWT_SECRET is not set")
		}
		token, err := api.IssueToken(cfg.Server.JWTSecret, "cli", 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	db, err := database.Initialize(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	client := csfloat.NewRestClient(csfloat.Config{
		Host:    cfg.CSFloat.Host,
		APIKey:  cfg.CSFloat.APIKey,
		Timeout: cfg.CSFloat.Timeout,
	}, log)
	market := csfloat.NewService(client)
	trackerService := tracker.NewService(db, market, log)

	if cfg.Tracker.Schedule != trackerOff {
		if err := trackerService.Start(cfg.Tracker.Schedule); err != nil {
			log.Fatalf("Failed to start tracker: %v", err)
		}
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), api.LoggerMiddleware(log), api.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	apiGroup := router.Group("/api/v1")
	if cfg.Server.JWTSecret != "" {
		apiGroup.Use(api.AuthMiddleware(cfg.Server.JWTSecret))
	} else {
		log.Warn("JWT_SECRET not set, local API is unauthenticated")
	}
	api.SetupRoutes(apiGroup, market, trackerService, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	log.WithFields(logrus.Fields{
		"port":    cfg.Server.Port,
		"host":    cfg.CSFloat.Host,
		"tracker": cfg.Tracker.Schedule,
	}).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	trackerService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
