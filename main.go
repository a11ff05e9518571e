package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"streetsense-be/config"
	"streetsense-be/controllers"
	"streetsense-be/email"
	"streetsense-be/repository"
	"streetsense-be/routes"
	"streetsense-be/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db := config.ConnectDB(cfg.MongoURI, cfg.DatabaseName)
	if db == nil {
		logger.Fatal("Failed to connect to MongoDB")
	}
	logger.Info("MongoDB connection established")

	userCollection := config.GetCollection("users")
	codeCollection := config.GetCollection("verification_codes")
	problemCollection := config.GetCollection("problems")

	if err := repository.EnsureUserIndexes(userCollection); err != nil {
		logger.Fatal("Failed to create user indexes", zap.Error(err))
	}
	if err := repository.EnsureCodeIndexes(codeCollection); err != nil {
		logger.Fatal("Failed to create verification code indexes", zap.Error(err))
	}

	if cfg.RedisAddr != "" {
		if err := config.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			logger.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			logger.Info("Connected to Redis")
		}
	}

	sender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		smtpSender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("SMTP sender init failed", zap.Error(err))
		} else {
			sender = smtpSender
		}
	}

	userRepo := repository.NewMongoUserRepository(userCollection)
	codeRepo := repository.NewMongoCodeRepository(codeCollection)
	problemRepo := repository.NewMongoProblemRepository(problemCollection)

	authService := services.NewAuthService(logger, userRepo, codeRepo, sender)
	problemService := services.NewProblemService(logger, problemRepo, userRepo)

	authController := controllers.NewAuthController(logger, authService, cfg.JWTSecret)
	problemController := controllers.NewProblemController(logger, problemService)
	searchController := controllers.NewSearchController(logger, problemService)

	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.UserRoutes(r, authController, cfg.JWTSecret, cfg.OTPSendLimit)
	routes.ProblemRoutes(r, problemController, cfg.JWTSecret, cfg.ProblemDailyLimit)
	routes.SearchRoutes(r, searchController)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	logger.Info("Starting server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
