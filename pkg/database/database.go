package database

import (
	"log"

	"github.com/harveywai/jokeadmin/pkg/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite file at path and runs migrations for the bot
// dataset. Use ":memory:" only for single-connection throwaway databases.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Perform automatic schema migration for the bot dataset.
	if err := db.AutoMigrate(
		&models.Trigger{},
		&models.Joke{},
		&models.StandaloneJoke{},
	); err != nil {
		return nil, err
	}

	log.Printf("database %s opened and migrations applied", path)
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return ErrDatabaseNotInitialized
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
