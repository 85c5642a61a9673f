package main

import (
	"context"
	"os"
	"time"

	"storefront-service/config"
	"storefront-service/internal/hashing"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Создаёт (или обновляет пароль) администратора витрины
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	dbCfg := config.LoadDB(log)
	db := database.ConnectDB(&dbCfg.Config, log)
	defer database.CloseDB(db, log)

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Warn("ADMIN_PASSWORD не задан, используется пароль по умолчанию")
	}

	hash, err := hashing.NewBcrypt(0).Hash(password)
	if err != nil {
		log.Fatal("Ошибка хеширования пароля", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	if err := users.Upsert(ctx, &models.User{Username: username, Password: hash, Role: models.RoleAdmin}); err != nil {
		log.Fatal("Ошибка создания администратора", zap.Error(err))
	}

	log.Info("Администратор создан", zap.String("username", username))
}
