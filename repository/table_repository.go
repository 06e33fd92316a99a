package repository

import (
	"dataprotectionapi/config"
	"dataprotectionapi/models"

	"gorm.io/gorm"
)

// TableRepository provides data access operations for registered tables.
type TableRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Table, error)
	// GetByIDWithRelations loads the table with its owning database (engine
	// type included) and declared columns, as needed by anonymization runs.
	GetByIDWithRelations(tx *gorm.DB, id uint) (*models.Table, error)
	List(tx *gorm.DB, databaseID uint, name string, offset, limit int) ([]models.Table, int64, error)
	Create(tx *gorm.DB, table *models.Table) error
	Update(tx *gorm.DB, table *models.Table) error
	Delete(tx *gorm.DB, id uint) error
	CountByDatabaseIDAndName(tx *gorm.DB, databaseID uint, name string, excludeID uint) (int64, error)
	SetAnonymized(tx *gorm.DB, id uint, anonymized bool) error
}

type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new table repository instance.
func NewTableRepository() TableRepository {
	return &tableRepository{
		db: config.DB,
	}
}

func (r *tableRepository) GetByID(tx *gorm.DB, id uint) (*models.Table, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var table models.Table
	if err := db.Table(models.Table{}.TableName()).Where("id = ?", id).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) GetByIDWithRelations(tx *gorm.DB, id uint) (*models.Table, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var table models.Table
	if err := db.
		Preload("Database").
		Preload("Database.ValidDatabase").
		Preload("Columns", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) List(tx *gorm.DB, databaseID uint, name string, offset, limit int) ([]models.Table, int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	query := db.Model(&models.Table{})
	if databaseID != 0 {
		query = query.Where("database_id = ?", databaseID)
	}
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tables []models.Table
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&tables).Error; err != nil {
		return nil, 0, err
	}
	return tables, total, nil
}

func (r *tableRepository) Create(tx *gorm.DB, table *models.Table) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(table).Error
}

func (r *tableRepository) Update(tx *gorm.DB, table *models.Table) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Save(table).Error
}

func (r *tableRepository) Delete(tx *gorm.DB, id uint) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Table{}, id).Error
}

func (r *tableRepository) CountByDatabaseIDAndName(tx *gorm.DB, databaseID uint, name string, excludeID uint) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	query := db.Model(&models.Table{}).Where("database_id = ? AND name = ?", databaseID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *tableRepository) SetAnonymized(tx *gorm.DB, id uint, anonymized bool) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Table{}).Where("id = ?", id).Update("anonymized", anonymized).Error
}
