package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // файл базы для sqlite
}

func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return SQLiteDSN(c.Path)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// SQLiteDSN включает внешние ключи и busy timeout: без них sqlite не выполняет
// ON DELETE CASCADE / SET NULL.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)
}

func dialector(cfg *Config) gorm.Dialector {
	if cfg.Driver == DriverSQLite {
		return sqlite.Open(cfg.DSN())
	}
	return postgres.Open(cfg.DSN())
}

// GormConfig общий конфиг gorm: TranslateError нужен, чтобы нарушения UNIQUE
// приходили как gorm.ErrDuplicatedKey для обоих драйверов.
func GormConfig(level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

func open(cfg *Config, level gormlogger.LogLevel, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(dialector(cfg), GormConfig(level))
	if err != nil {
		log.Fatal("Не удалось подключиться к базе данных", zap.String("driver", cfg.Driver), zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Не удалось получить *sql.DB", zap.Error(err))
	}
	if cfg.Driver == DriverSQLite {
		// один писатель на файл
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	log.Info("Подключение к базе данных установлено", zap.String("driver", cfg.Driver))
	return db
}

func ConnectDB(cfg *Config, log *zap.Logger) *gorm.DB {
	return open(cfg, gormlogger.Warn, log)
}

func ConnectDBForMigration(cfg *Config, log *zap.Logger) *gorm.DB {
	return open(cfg, gormlogger.Info, log)
}

func CloseDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Не удалось получить *sql.DB при закрытии", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Ошибка при закрытии соединения с базой данных", zap.Error(err))
		return
	}
	log.Info("Соединение с базой данных закрыто")
}
