package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hamdk/auth-service/internal/auth"
	"github.com/hamdk/auth-service/internal/config"
	"github.com/hamdk/auth-service/internal/database"
	"github.com/hamdk/auth-service/internal/handler"
	"github.com/hamdk/auth-service/internal/queue"
	"github.com/hamdk/auth-service/internal/repository"
	"github.com/hamdk/auth-service/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := database.Migrate(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Rate limiting degrades to a no-op when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	kakao := auth.NewKakaoExchanger(cfg.Kakao)
	svc := auth.NewService(users, sessions, codec, kakao, cfg.BcryptCost)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	// Audit-log consumer runs for the life of the process.
	go queue.StartAuthEventConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
