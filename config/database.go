package config

import (
	"os"

	"github.com/mfcarvalho/flashdeck-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Database *gorm.DB

func Connect() error {
	var err error
	dbURL := os.Getenv("DB_URL")
	if dbURL != "" {
		Database, err = gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	} else {
		// Local development fallback
		Database, err = gorm.Open(sqlite.Open("flashdeck.db"), &gorm.Config{})
	}
	if err != nil {
		panic("failed to connect database")
	}

	err = Database.AutoMigrate(&models.User{}, &models.Class{}, &models.Flashcard{}, &models.PerformanceRecord{})
	if err != nil {
		panic("failed to auto migrate database")
	}

	return nil
}
