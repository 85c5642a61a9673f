package migrate

import (
	"context"

	"storefront-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateIndexes          bool // индексы под выборки админки и трекинг
	CreateUpdatedAtTrigger bool // триггер обновления updated_at у products (только postgres)
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
	}
}

func isPostgres(db *gorm.DB) bool { return db.Dialector.Name() == "postgres" }

// MigrateStoreDB создаёт таблицы products, orders, order_items, users.
// CHECK-ограничения статусов, количества и сумм объявлены в тегах моделей,
// поэтому одинаково работают в postgres и sqlite.
func MigrateStoreDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных магазина", zap.String("dialect", db.Dialector.Name()))
	db = db.WithContext(ctx)

	// Таблицы
	log.Info("Создание таблиц products, orders, order_items, users")
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.User{}); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}
	log.Info("Таблицы успешно созданы")

	// Триггер updated_at только для products: у orders updated_at пишет сервис
	// тем же временем, что уходит в событие смены статуса.
	if opt.CreateUpdatedAtTrigger && isPostgres(db) {
		log.Info("Создание триггеров updated_at")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated
BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("Не удалось создать триггер updated_at", zap.Error(err))
			return err
		}
		log.Info("Триггеры updated_at успешно созданы")
	}

	// Индексы
	if opt.CreateIndexes {
		log.Info("Создание индексов")

		// Список заказов в админке: по статусу и дате
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_status_created
ON orders (order_status, created_at DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_orders_status_created", zap.Error(err))
			return err
		}

		// payment_status индексируется тегом модели
		if err := db.Exec(`DROP INDEX IF EXISTS ix_orders_payment_status;`).Error; err != nil {
			log.Error("Не удалось удалить индекс ix_orders_payment_status", zap.Error(err))
			return err
		}

		// Витрина: новые товары первыми
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_products_created
ON products (created_at DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_products_created", zap.Error(err))
			return err
		}

		log.Info("Индексы успешно созданы")
	}

	log.Info("Миграция базы данных магазина успешно завершена")
	return nil
}
