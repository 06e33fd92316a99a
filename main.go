package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"dataprotectionapi/bootstrap"
	"dataprotectionapi/config"
	"dataprotectionapi/controllers"
	_ "dataprotectionapi/docs"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/services"
	"dataprotectionapi/services/anonymization"
	"dataprotectionapi/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           dataprotectionapi
// @version         1.0
// @description     Data Protection API

// @BasePath  /api

func main() {
	// 1) Load config
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("LoadConfig error: %v", err)
	}

	// 2) Connect DB (GORM)
	if err := config.ConnectDB(); err != nil {
		log.Fatalf("ConnectDB error: %v", err)
	}
	if config.DB == nil {
		log.Fatal("Database is nil after ConnectDB")
	}

	if err := bootstrap.LoadData(); err != nil {
		log.Fatalf("Load data error: %v", err)
	}

	controllers.SetUserService(services.NewUserService())
	controllers.SetDatabaseService(services.NewDatabaseService())
	controllers.SetTableService(services.NewTableService())
	controllers.SetColumnService(services.NewColumnService())
	controllers.SetAnonymizationService(anonymization.NewService())

	// 3) Init structured logger with config
	logLevel := logger.ParseLogLevel(config.Cfg.LogLevel)
	logger.InitWithConfig(
		config.Cfg.LogFile,
		logLevel,
		config.Cfg.LogMaxSize,
		config.Cfg.LogMaxBackups,
		config.Cfg.LogMaxAge,
		config.Cfg.LogCompress,
	)
	logger.Infof("Starting Data Protection API with log level: %s", config.Cfg.LogLevel)

	// 4) Setup Gin
	router := gin.Default()
	router.Use(utils.LoggerMiddleware())

	v1 := router.Group("/api")
	{
		controllers.RegisterUserRoutes(v1)
		controllers.RegisterDatabaseRoutes(v1)
		controllers.RegisterTableRoutes(v1)
		controllers.RegisterColumnRoutes(v1)
		controllers.RegisterAnonymizationRoutes(v1)
	}

	// 5) Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 6) Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Infof("Received shutdown signal")
		logger.Infof("Application shutdown complete")
		os.Exit(0)
	}()

	// 7) Run
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	logger.Infof("Starting server at port %s", port)
	router.Run("0.0.0.0:" + port)
}
