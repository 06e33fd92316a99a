package repository

import (
	"dataprotectionapi/config"
	"dataprotectionapi/models"

	"gorm.io/gorm"
)

// DatabaseFilter narrows database listings. Zero values are ignored.
type DatabaseFilter struct {
	ValidDatabaseID uint
	Username        string
	Host            string
	Port            int
	Name            string
}

// DatabaseRepository provides data access operations for registered database connections.
type DatabaseRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Database, error)
	List(tx *gorm.DB, filter DatabaseFilter, offset, limit int) ([]models.Database, int64, error)
	Create(tx *gorm.DB, database *models.Database) error
	Update(tx *gorm.DB, database *models.Database) error
	Delete(tx *gorm.DB, id uint) error
	CountByCoordinates(tx *gorm.DB, username, host string, port int, name string, excludeID uint) (int64, error)
}

type databaseRepository struct {
	db *gorm.DB
}

// NewDatabaseRepository creates a new database repository instance.
func NewDatabaseRepository() DatabaseRepository {
	return &databaseRepository{
		db: config.DB,
	}
}

func (r *databaseRepository) GetByID(tx *gorm.DB, id uint) (*models.Database, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var database models.Database
	if err := db.Preload("ValidDatabase").Where("id = ?", id).First(&database).Error; err != nil {
		return nil, err
	}
	return &database, nil
}

func (r *databaseRepository) List(tx *gorm.DB, filter DatabaseFilter, offset, limit int) ([]models.Database, int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	query := db.Model(&models.Database{})
	if filter.ValidDatabaseID != 0 {
		query = query.Where("valid_database_id = ?", filter.ValidDatabaseID)
	}
	if filter.Username != "" {
		query = query.Where("username LIKE ?", "%"+filter.Username+"%")
	}
	if filter.Host != "" {
		query = query.Where("host LIKE ?", "%"+filter.Host+"%")
	}
	if filter.Port != 0 {
		query = query.Where("port = ?", filter.Port)
	}
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var databases []models.Database
	if err := query.Preload("ValidDatabase").Order("id").Offset(offset).Limit(limit).Find(&databases).Error; err != nil {
		return nil, 0, err
	}
	return databases, total, nil
}

func (r *databaseRepository) Create(tx *gorm.DB, database *models.Database) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(database).Error
}

func (r *databaseRepository) Update(tx *gorm.DB, database *models.Database) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Save(database).Error
}

func (r *databaseRepository) Delete(tx *gorm.DB, id uint) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Database{}, id).Error
}

func (r *databaseRepository) CountByCoordinates(tx *gorm.DB, username, host string, port int, name string, excludeID uint) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	query := db.Model(&models.Database{}).
		Where("username = ? AND host = ? AND port = ? AND name = ?", username, host, port, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
