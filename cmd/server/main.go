package main // Entry point package

import (
	"log"  // Logging library
	"time" // cleanup interval

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/auth-account-service/internal/config"
	"github.com/iliyamo/auth-account-service/internal/database"
	"github.com/iliyamo/auth-account-service/internal/handler"
	"github.com/iliyamo/auth-account-service/internal/mailer"
	"github.com/iliyamo/auth-account-service/internal/queue"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/router"
	"github.com/iliyamo/auth-account-service/internal/service"
)

func main() {
	_ = godotenv.Load() // best effort; real deployments set env directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	otps := repository.NewOtpRepo(db)

	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	events := queue.NewPublisher(cfg.AmqpURL)

	sessionMgr := service.NewSessionManager(sessions, users, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	otpEngine := service.NewOtpEngine(otps, cfg.OtpLength, time.Duration(cfg.OtpTTLMin)*time.Minute)
	authSvc := service.NewAuthService(users, sessionMgr, otpEngine, mail, events, cfg.BcryptCost)
	userSvc := service.NewUserService(users, cfg.BcryptCost)

	// Background workers: the welcome email consumer and the
	// expired-row sweeper both run for the life of the process.
	go queue.StartWelcomeConsumer(cfg.AmqpURL, mail)
	go queue.StartCleanupSweeper(time.Duration(cfg.CleanupEvery)*time.Minute, sessions, otps)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), handler.NewUserHandler(userSvc), cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
