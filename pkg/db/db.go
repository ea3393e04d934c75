package db

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const ClinicDB = "clinic"

type DBConfig struct {
	Host     string
	User     string
	Password string
	DBName   string
	Port     string
	SSLMode  string
}

type DatabaseManager struct {
	connections map[string]*gorm.DB
	log         *logrus.Logger
	mu          sync.RWMutex
}

func NewDatabaseManager(log *logrus.Logger) *DatabaseManager {
	return &DatabaseManager{
		connections: make(map[string]*gorm.DB),
		log:         log,
	}
}

func (dm *DatabaseManager) Connect(dbType string, config DBConfig, models ...interface{}) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.Host, config.User, config.Password, config.DBName, config.Port, sslMode)

	// TranslateError surfaces unique-index collisions as
	// gorm.ErrDuplicatedKey, which the idempotency gate relies on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("error opening %s database: %v", dbType, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("error getting underlying SQL DB for %s: %v", dbType, err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return fmt.Errorf("error auto-migrating models for %s: %v", dbType, err)
		}
	}

	dm.connections[dbType] = db
	dm.log.Infof("[DATABASE] - %s database connection established", dbType)
	return nil
}

func (dm *DatabaseManager) GetDB(dbType string) (*gorm.DB, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	db, exists := dm.connections[dbType]
	if !exists {
		return nil, fmt.Errorf("no connection found for database: %s", dbType)
	}
	return db, nil
}

func (dm *DatabaseManager) CloseAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for dbType, db := range dm.connections {
		sqlDB, err := db.DB()
		if err != nil {
			dm.log.Errorf("error getting underlying SQL DB for %s: %v", dbType, err)
			continue
		}
		if err := sqlDB.Close(); err != nil {
			dm.log.Errorf("error closing %s database connection: %v", dbType, err)
		}
	}
	dm.connections = make(map[string]*gorm.DB)
}
