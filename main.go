package main

import (
	"github.com/yxlimo/paperhub/config"
	"github.com/yxlimo/paperhub/database"
	"github.com/yxlimo/paperhub/events"
	"github.com/yxlimo/paperhub/handler"
	"github.com/yxlimo/paperhub/mailer"
	"github.com/yxlimo/paperhub/metrics"
	"github.com/yxlimo/paperhub/models"
	"github.com/yxlimo/paperhub/realtime"
	"github.com/yxlimo/paperhub/repository"
	"github.com/yxlimo/paperhub/router"
	"github.com/yxlimo/paperhub/service"
	"github.com/yxlimo/paperhub/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func autoMigrate(db *gorm.DB, logger *logrus.Logger) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Paper{},
		&models.Download{},
		&models.EmailVerification{},
	)
	if err != nil {
		logger.Fatalf("auto migrate failed: %v", err)
	}
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("加载配置失败: %v", err)
	}

	metrics.StartMetricsServer(cfg.Metrics.Port)
	logger.Infof("Prometheus metrics server started on :%s", cfg.Metrics.Port)

	db := database.InitDB(cfg)
	autoMigrate(db, logger)
	store := repository.NewStore(db)

	files, err := storage.NewMinioStore(cfg.MinIO)
	if err != nil {
		logger.Fatalf("初始化 MinIO 失败: %v", err)
	}

	hub := realtime.NewHub(logger)
	fanout := service.Fanout{hub}
	if publisher := events.NewPublisher(cfg.Kafka, logger); publisher != nil {
		defer publisher.Close()
		fanout = append(fanout, publisher)
		logger.Info("Kafka event mirror enabled")
	} else {
		logger.Info("Kafka event mirror disabled (missing config)")
	}

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)

	authService := service.NewAuthService(store, smtpMailer, files, cfg.JWT.ExpireMinutes, logger)
	userService := service.NewUserService(store, files, logger)
	paperService := service.NewPaperService(store, files, fanout, cfg.MinIO.BucketName, logger)
	reviewService := service.NewReviewService(store, fanout, logger)

	r := router.Setup(
		handler.NewAuthHandler(authService, logger),
		handler.NewPaperHandler(paperService, logger),
		handler.NewUserHandler(userService, paperService, logger),
		handler.NewAdminHandler(reviewService, logger),
		handler.NewWSHandler(hub),
	)

	logger.Infof("HTTP server listening on :%s", cfg.HTTP.Port)
	if err := r.Run(":" + cfg.HTTP.Port); err != nil {
		logger.Fatalf("http serve error: %v", err)
	}
}
