package database

import (
	"errors"
	"log"

	"github.com/harveywai/jokeadmin/pkg/models"
	"gorm.io/gorm"
)

var (
	// ErrDatabaseNotInitialized is returned when database operations are attempted with a nil handle.
	ErrDatabaseNotInitialized = errors.New("database not initialized")
)

// demoTriggers is the dataset written by SeedDemo.
var demoTriggers = []models.Trigger{
	{Value: "программист", Jokes: []models.Joke{
		{Text: "Программист ставит на тумбочку два стакана: с водой, если захочет пить, и пустой, если не захочет."},
	}},
	{Value: "понедельник", Jokes: []models.Joke{
		{Text: "Понедельник начинается в субботу."},
	}},
}

var demoStandalone = []models.StandaloneJoke{
	{Text: "Штирлиц долго смотрел в одну точку. Потом в другую. «Двоеточие!», догадался Штирлиц."},
}

// SeedDemo fills an empty database with a few triggers and jokes so the
// console has something to show. A database that already has triggers is left
// untouched.
func SeedDemo(db *gorm.DB) error {
	if db == nil {
		return ErrDatabaseNotInitialized
	}

	var count int64
	if err := db.Model(&models.Trigger{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range demoTriggers {
			trigger := models.Trigger{Value: t.Value, Jokes: append([]models.Joke(nil), t.Jokes...)}
			if err := tx.Create(&trigger).Error; err != nil {
				return err
			}
		}
		standalone := append([]models.StandaloneJoke(nil), demoStandalone...)
		if err := tx.Create(&standalone).Error; err != nil {
			return err
		}
		log.Println("demo triggers and jokes seeded")
		return nil
	})
}
