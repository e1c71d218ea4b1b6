package database

import (
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"csfloat-trader/internal/models"
)

// Initialize opens the sqlite database at databaseURL and migrates the
// snapshot tables.
func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// sqlite allows a single writer; one connection also keeps :memory:
	// databases alive across queries.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database handle")
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.BalanceSnapshot{},
		&models.OrderSnapshot{},
	)
	if err != nil {
		return nil, errors.Wrap(err, "migrate database")
	}

	return db, nil
}
