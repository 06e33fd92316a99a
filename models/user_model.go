package models

// User represents an account that owns registered databases.
type User struct {
	ID      uint   `gorm:"primaryKey;column:id" json:"id"`
	Name    string `gorm:"column:name;unique" json:"name" validate:"required"`
	IsAdmin bool   `gorm:"column:is_admin" json:"is_admin"`

	Databases []Database `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the static table name for GORM.
// Required to override GORM's default pluralization behavior.
func (User) TableName() string {
	return "user"
}
