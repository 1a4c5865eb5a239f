package repository

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sciencejournal/models"
)

// Open verbindet sich mit der Datenbank. driver ist "postgres" oder "sqlite".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
}

// Migrate legt alle Tabellen des Portals an bzw. aktualisiert sie.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ScienceUser{},
		&models.Conference{},
		&models.PaperDocument{},
		&models.Paper{},
		&models.PaperAuthor{},
		&models.PapersKeywords{},
		&models.PaperReview{},
	)
}
