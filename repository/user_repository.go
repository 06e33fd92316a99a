package repository

import (
	"dataprotectionapi/config"
	"dataprotectionapi/models"

	"gorm.io/gorm"
)

// UserRepository provides data access operations for user records.
type UserRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.User, error)
	List(tx *gorm.DB, name string, offset, limit int) ([]models.User, int64, error)
	Create(tx *gorm.DB, user *models.User) error
	Delete(tx *gorm.DB, id uint) error
	CountByName(tx *gorm.DB, name string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance.
func NewUserRepository() UserRepository {
	return &userRepository{
		db: config.DB,
	}
}

func (r *userRepository) GetByID(tx *gorm.DB, id uint) (*models.User, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.Table(models.User{}.TableName()).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(tx *gorm.DB, name string, offset, limit int) ([]models.User, int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	query := db.Model(&models.User{})
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Create(tx *gorm.DB, user *models.User) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(user).Error
}

func (r *userRepository) Delete(tx *gorm.DB, id uint) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.User{}, id).Error
}

func (r *userRepository) CountByName(tx *gorm.DB, name string) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var count int64
	if err := db.Model(&models.User{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
