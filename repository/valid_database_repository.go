package repository

import (
	"dataprotectionapi/config"
	"dataprotectionapi/models"

	"gorm.io/gorm"
)

// ValidDatabaseRepository provides data access operations for the engine type enumeration.
type ValidDatabaseRepository interface {
	GetAll(tx *gorm.DB) ([]models.ValidDatabase, error)
	GetByID(tx *gorm.DB, id uint) (*models.ValidDatabase, error)
	GetByName(tx *gorm.DB, name string) (*models.ValidDatabase, error)
	Create(tx *gorm.DB, validDatabase *models.ValidDatabase) error
}

type validDatabaseRepository struct {
	db *gorm.DB
}

// NewValidDatabaseRepository creates a new valid database repository instance.
func NewValidDatabaseRepository() ValidDatabaseRepository {
	return &validDatabaseRepository{
		db: config.DB,
	}
}

func (r *validDatabaseRepository) GetAll(tx *gorm.DB) ([]models.ValidDatabase, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var validDatabases []models.ValidDatabase
	if err := db.Table(models.ValidDatabase{}.TableName()).Order("id").Find(&validDatabases).Error; err != nil {
		return nil, err
	}
	return validDatabases, nil
}

func (r *validDatabaseRepository) GetByID(tx *gorm.DB, id uint) (*models.ValidDatabase, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var validDatabase models.ValidDatabase
	if err := db.Table(models.ValidDatabase{}.TableName()).Where("id = ?", id).First(&validDatabase).Error; err != nil {
		return nil, err
	}
	return &validDatabase, nil
}

func (r *validDatabaseRepository) GetByName(tx *gorm.DB, name string) (*models.ValidDatabase, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var validDatabase models.ValidDatabase
	if err := db.Table(models.ValidDatabase{}.TableName()).Where("name = ?", name).First(&validDatabase).Error; err != nil {
		return nil, err
	}
	return &validDatabase, nil
}

func (r *validDatabaseRepository) Create(tx *gorm.DB, validDatabase *models.ValidDatabase) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(validDatabase).Error
}
