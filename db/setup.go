package db

import (
	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

// Open connects through an arbitrary dialector. Tests use this to run the
// same migrations against an in-memory sqlite database.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{})
}

func Migrate(gdb *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Activity{},
		&models.ActivityAccess{},
		&models.Subtask{},
		&models.ActivityHistory{},
		&models.ActivityFile{},
		&models.Invitation{},
		&models.Webhook{},
	}

	migrator := gdb.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := gdb.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}
