package database

import (
	"fmt"
	"log"

	"juicybets/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// GetDB returns the shared database handle
func GetDB() *gorm.DB {
	return DB
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	ledgerModels := []interface{}{
		&models.UserAccount{},
		&models.BetState{},
		&models.WagerDetail{},
		&models.ActiveWager{},
	}

	for _, model := range ledgerModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed")
	return nil
}
