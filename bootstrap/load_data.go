package bootstrap

import (
	"errors"
	"fmt"

	"dataprotectionapi/config"
	"dataprotectionapi/models"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/repository"

	"gorm.io/gorm"
)

// ValidDatabaseAll stores all supported engine types loaded at startup.
var ValidDatabaseAll []models.ValidDatabase

// supportedEngines lists the engine types seeded on first startup.
var supportedEngines = []string{"mysql", "postgresql"}

// LoadData migrates the catalog schema and seeds the supported engine types.
func LoadData() error {
	logger.Infof("Starting bootstrap data loading...")

	if err := migrateSchema(); err != nil {
		return err
	}

	validDatabaseRepo := repository.NewValidDatabaseRepository()
	if err := seedValidDatabases(validDatabaseRepo); err != nil {
		return err
	}
	if err := loadValidDatabaseAll(validDatabaseRepo); err != nil {
		return err
	}

	logger.Infof("Bootstrap data loading completed successfully")
	return nil
}

func migrateSchema() error {
	err := config.DB.AutoMigrate(
		&models.User{},
		&models.ValidDatabase{},
		&models.Database{},
		&models.Table{},
		&models.Column{},
	)
	if err != nil {
		logger.Errorf("Failed to migrate catalog schema: %v", err)
		return fmt.Errorf("failed to migrate catalog schema: %v", err)
	}
	return nil
}

func seedValidDatabases(repo repository.ValidDatabaseRepository) error {
	for _, name := range supportedEngines {
		_, err := repo.GetByName(nil, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Errorf("Failed to look up engine type %s: %v", name, err)
			return fmt.Errorf("failed to look up engine type %s: %v", name, err)
		}
		if err := repo.Create(nil, &models.ValidDatabase{Name: name}); err != nil {
			logger.Errorf("Failed to seed engine type %s: %v", name, err)
			return fmt.Errorf("failed to seed engine type %s: %v", name, err)
		}
		logger.Infof("Seeded engine type %s", name)
	}
	return nil
}

func loadValidDatabaseAll(repo repository.ValidDatabaseRepository) error {
	validDatabases, err := repo.GetAll(nil)
	if err != nil {
		logger.Errorf("Failed to load all valid databases: %v", err)
		return fmt.Errorf("failed to load all valid databases: %v", err)
	}
	ValidDatabaseAll = validDatabases
	logger.Infof("Loaded %d valid databases", len(validDatabases))
	return nil
}
