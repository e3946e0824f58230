package main

import (
	"strconv"
	"time"

	"company-service/internal/handler"
	"company-service/internal/middleware"
	"company-service/internal/model"
	"company-service/pkg/config"
	"company-service/pkg/database"
	"company-service/pkg/jwtutil"
	"company-service/pkg/logger"
	"company-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting company service...", zap.String("environment", cfg.Server.Env))

	// Initialize JWT utilities
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utilities initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize database and run migrations
	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(
		&model.Company{},
		&model.History{},
		&model.HistoryAttachment{},
		&model.Payment{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host),
		zap.String("db_name", cfg.DB.DBName))

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := c.Response().Status

			log := logger.FromContext(c)
			log.Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Float64("duration_s", duration),
				zap.String("ip", c.RealIP()),
			)

			prometheus.HttpRequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Inc()

			prometheus.HttpRequestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Observe(duration)

			return err
		}
	})

	// Public routes that don't require authentication
	e.GET("/", handler.Hello)
	e.GET("/health", handler.Hello)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes that require an authenticated admin
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.Use(middleware.RequireAdmin)

	companies := api.Group("/companies")
	companies.POST("", handler.CreateCompany)
	companies.GET("", handler.ListCompanies)
	companies.GET("/:companyId", handler.GetCompany)
	companies.PATCH("/:companyId", handler.UpdateCompany)
	companies.DELETE("/:companyId", handler.DeleteCompany)
	companies.PATCH("/:companyId/activate", handler.ActivateCompany)
	companies.PATCH("/:companyId/inactivate", handler.InactivateCompany)
	companies.PATCH("/:companyId/cancel-subscription", handler.CancelSubscription)

	companies.POST("/:companyId/histories", handler.CreateHistory)
	companies.GET("/:companyId/histories", handler.ListHistories)
	companies.PATCH("/:companyId/histories/:historyId", handler.UpdateHistory)
	companies.DELETE("/:companyId/histories/:historyId", handler.DeleteHistory)

	companies.POST("/:companyId/histories/:historyId/attachments", handler.CreateAttachment)
	companies.DELETE("/:companyId/histories/:historyId/attachments/:attachmentId", handler.DeleteAttachment)

	companies.POST("/:companyId/finances", handler.CreatePayment)
	companies.GET("/:companyId/finances", handler.ListPayments)
	companies.PATCH("/:companyId/finances/:paymentId", handler.UpdatePayment)
	companies.DELETE("/:companyId/finances/:paymentId", handler.DeletePayment)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
