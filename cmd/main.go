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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/proteq/go-email-service/internal/consumer"
	"github.com/proteq/go-email-service/internal/handler"
	"github.com/proteq/go-email-service/internal/middleware"
	"github.com/proteq/go-email-service/internal/quota"
	"github.com/proteq/go-email-service/internal/repository"
	"github.com/proteq/go-email-service/internal/service"
	"github.com/proteq/go-email-service/internal/shared/config"
	"github.com/proteq/go-email-service/internal/shared/logger"
	"github.com/proteq/go-email-service/internal/shared/mongodb"
	"github.com/proteq/go-email-service/internal/shared/rabbitmq"
	"github.com/proteq/go-email-service/internal/smtp"
	"github.com/proteq/go-email-service/internal/template"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting Email Service...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	smtpReady := cfg.SMTP.Username != "" && cfg.SMTP.Password != ""
	if !smtpReady {
		log.Warn("SMTP credentials not configured, deliveries will fail")
	}

	// Mongo and RabbitMQ are optional capabilities: without them the
	// service still validates and delivers, it just skips the send log
	// and the billing-event consumer
	var emailLogRepo *repository.EmailLogRepository
	mongoClient, err := mongodb.NewMongoClient(cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		log.Warn("MongoDB unavailable, send log disabled", "error", err)
	} else {
		defer mongoClient.Disconnect(context.Background())
		emailLogRepo = repository.NewEmailLogRepository(mongoClient)
	}

	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQ.URL)
	if err != nil {
		log.Warn("RabbitMQ unavailable, billing event consumer disabled", "error", err)
	} else {
		defer rabbitClient.Close()
	}

	pool := smtp.NewPool(smtp.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		PoolSize:    cfg.SMTP.PoolSize,
		MaxMessages: cfg.SMTP.MaxMessages,
	})
	defer pool.Close()

	tracker := quota.NewTracker(cfg.Limits.MaxEmailsPerHour, cfg.Limits.MaxEmailsPerDay, log)
	if err := tracker.Start(); err != nil {
		log.Fatal("Failed to start quota tracker", "error", err)
	}
	defer tracker.Stop()

	var logStore service.EmailLogStore
	if emailLogRepo != nil {
		logStore = emailLogRepo
	}

	emailService := service.NewEmailService(cfg.SMTP, pool, logStore, template.NewResolver(), tracker, log)
	bulkService := service.NewBulkEmailService(emailService, cfg.Limits.DelayBetweenEmails, log)

	singleLimiter := middleware.NewFixedWindowLimiter(cfg.Limits.SingleSendPerHour, time.Hour, "send")
	bulkLimiter := middleware.NewFixedWindowLimiter(cfg.Limits.BulkSendPerHour, time.Hour, "send-bulk")
	apiLimiter := middleware.NewFixedWindowLimiter(cfg.Limits.APIRequests, cfg.Limits.APIWindow, "api")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var statsStore handler.StatsStore
	if emailLogRepo != nil {
		statsStore = emailLogRepo
	}

	emailHandler := handler.NewEmailHandler(emailService, bulkService, statsStore, smtpReady, log)

	api := router.Group("/api/email")
	api.Use(middleware.RateLimitMiddleware(apiLimiter))
	emailHandler.RegisterRoutes(api,
		middleware.RateLimitMiddleware(singleLimiter),
		middleware.RateLimitMiddleware(bulkLimiter))

	if rabbitClient != nil {
		eventConsumer := consumer.NewEventConsumer(rabbitClient, emailService, log)
		go func() {
			if err := eventConsumer.Start(context.Background()); err != nil {
				log.Error("Billing event consumer stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Email Service started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Email Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Email Service stopped")
}
