package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Dan9191/etl-pipeline/internal/config"
	"github.com/Dan9191/etl-pipeline/internal/handler"
	"github.com/Dan9191/etl-pipeline/internal/integrations/placeholder"
	"github.com/Dan9191/etl-pipeline/internal/middleware"
	"github.com/Dan9191/etl-pipeline/internal/repository"
	"github.com/Dan9191/etl-pipeline/internal/service"
	"github.com/Dan9191/etl-pipeline/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open(cfg.DBDriver, cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db, cfg.DBDriver)
	client := placeholder.NewClient(cfg, logger)
	svc := service.NewService(repo, client, logger, cfg, os.Stdout)
	if cfg.SMTPHost != "" && cfg.ReportEmail != "" {
		svc.SetMailer(email.NewSender(cfg, logger))
	}

	// One-shot mode: run the pipeline once and exit
	if cfg.Schedule == "" {
		if _, err := svc.Run(context.Background()); err != nil {
			logger.Fatalf("Pipeline run failed: %v", err)
		}
		fmt.Printf("\nETL pipeline finished successfully. Database: %s\n", cfg.DBConn)
		return
	}

	// Scheduled mode: run on the cron schedule and serve admin endpoints
	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() {
		if _, err := svc.Run(context.Background()); err != nil {
			logger.Errorf("Scheduled pipeline run failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Invalid ETL_SCHEDULE %q: %v", cfg.Schedule, err)
	}
	c.Start()
	defer c.Stop()

	if _, err := svc.Run(context.Background()); err != nil {
		logger.Errorf("Initial pipeline run failed: %v", err)
	}

	h := handler.NewHandler(svc)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/status", h.Status).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/run", h.TriggerRun).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.AdminPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	logger.Infof("Starting admin server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
