package main

import (
	"context"
	"fmt"
	"log"

	"arcadesync/config"
	"arcadesync/internal/application/usecase"
	"arcadesync/internal/domain"
	"arcadesync/internal/infrastructure/cache"
	"arcadesync/internal/infrastructure/repository"
	"arcadesync/internal/infrastructure/security"
	"arcadesync/internal/middleware"
	handlers "arcadesync/internal/transport/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// 1. Конфиг
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Подключение к БД
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// 3. Миграции
	log.Println("Running migrations...")
	if err := db.AutoMigrate(
		&domain.Profile{},
		&domain.ScoreEntry{},
		&domain.Shop{},
		&domain.PaseliAccount{},
	); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// 4. Инициализация слоев
	profileRepo := repository.NewProfileRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	shopRepo := repository.NewShopRepository(db)
	paseliRepo := repository.NewPaseliRepository(db)
	sessions := cache.NewSessionStore(rdb)

	resolver := usecase.NewResolver(profileRepo)
	signUp := usecase.NewSignUp(profileRepo)
	merger := usecase.NewMerger(profileRepo)
	composer := usecase.NewComposer()
	scores := usecase.NewScores(scoreRepo)

	hasher := security.NewPasswordHasher()
	tokens := security.NewTokenManager(cfg.JWTSecret)
	limiter := middleware.NewRateLimiter(rdb)

	usrHandler := handlers.NewUsrHandler(resolver, signUp, merger, composer, scores)
	eacoinHandler := handlers.NewEacoinHandler(sessions, shopRepo, paseliRepo, cfg.ArcadeName, cfg.PaseliDefault)
	shopHandler := handlers.NewShopHandler(shopRepo, cfg.ArcadeName)
	adminHandler := handlers.NewAdminHandler(resolver, paseliRepo, hasher, tokens, cfg.AdminPasswordHash)

	// 5. Запуск HTTP сервера
	router := handlers.NewRouter(usrHandler, eacoinHandler, shopHandler, adminHandler, limiter, tokens)

	log.Printf("arcadesync running on port %s", cfg.HTTPPort)
	if err := router.Run(cfg.HTTPPort); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
