package repository

import (
	"dataprotectionapi/config"
	"dataprotectionapi/models"

	"gorm.io/gorm"
)

// ColumnRepository provides data access operations for declared sensitive columns.
type ColumnRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Column, error)
	GetByTableID(tx *gorm.DB, tableID uint) ([]models.Column, error)
	List(tx *gorm.DB, tableID uint, name string, offset, limit int) ([]models.Column, int64, error)
	Create(tx *gorm.DB, column *models.Column) error
	Update(tx *gorm.DB, column *models.Column) error
	Delete(tx *gorm.DB, id uint) error
	DeleteByTableID(tx *gorm.DB, tableID uint) error
	CountByTableIDAndName(tx *gorm.DB, tableID uint, name string, excludeID uint) (int64, error)
}

type columnRepository struct {
	db *gorm.DB
}

// NewColumnRepository creates a new column repository instance.
func NewColumnRepository() ColumnRepository {
	return &columnRepository{
		db: config.DB,
	}
}

func (r *columnRepository) GetByID(tx *gorm.DB, id uint) (*models.Column, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var column models.Column
	if err := db.Table(models.Column{}.TableName()).Where("id = ?", id).First(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *columnRepository) GetByTableID(tx *gorm.DB, tableID uint) ([]models.Column, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var columns []models.Column
	if err := db.Table(models.Column{}.TableName()).Where("table_id = ?", tableID).Order("id").Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

func (r *columnRepository) List(tx *gorm.DB, tableID uint, name string, offset, limit int) ([]models.Column, int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	query := db.Model(&models.Column{})
	if tableID != 0 {
		query = query.Where("table_id = ?", tableID)
	}
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var columns []models.Column
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&columns).Error; err != nil {
		return nil, 0, err
	}
	return columns, total, nil
}

func (r *columnRepository) Create(tx *gorm.DB, column *models.Column) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(column).Error
}

func (r *columnRepository) Update(tx *gorm.DB, column *models.Column) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Save(column).Error
}

func (r *columnRepository) Delete(tx *gorm.DB, id uint) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Column{}, id).Error
}

func (r *columnRepository) DeleteByTableID(tx *gorm.DB, tableID uint) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Where("table_id = ?", tableID).Delete(&models.Column{}).Error
}

func (r *columnRepository) CountByTableIDAndName(tx *gorm.DB, tableID uint, name string, excludeID uint) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	query := db.Model(&models.Column{}).Where("table_id = ? AND name = ?", tableID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
