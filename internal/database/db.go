package database

import (
	"procurement/internal/model"

	gormlogrus "github.com/onrik/gorm-logrus"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the connection pool and migrates the schema.
func NewConnection(dsn string, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogrus.New(),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if debug {
		db.Logger = logger.Default.LogMode(logger.Info)
	}

	if err := Migrate(db); err != nil {
		log.WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}

// Migrate creates or updates the tables backing the models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.PurchaseRequest{},
		&model.AuditLog{},
	)
}
