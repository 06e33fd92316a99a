package models

import "fmt"

// Database represents a user-registered external database connection.
// The connection coordinates point at a live database owned by whichever
// system manages it; this service only reads from and writes back into it
// during anonymization runs.
type Database struct {
	ID              uint   `gorm:"primaryKey;column:id" json:"id"`
	UserID          uint   `gorm:"column:user_id" json:"user_id" validate:"required"`
	ValidDatabaseID uint   `gorm:"column:valid_database_id" json:"valid_database_id" validate:"required"`
	Username        string `gorm:"column:username" json:"username" validate:"required"`
	Password        string `gorm:"column:password" json:"password,omitempty" validate:"required"`
	Host            string `gorm:"column:host" json:"host" validate:"required"`
	Port            int    `gorm:"column:port" json:"port" validate:"required"`
	Name            string `gorm:"column:name" json:"name" validate:"required"`

	User          *User          `gorm:"foreignKey:UserID" json:"-"`
	ValidDatabase *ValidDatabase `gorm:"foreignKey:ValidDatabaseID" json:"-"`
	Tables        []Table        `gorm:"foreignKey:DatabaseID" json:"-"`
}

// TableName specifies the static table name for GORM.
func (Database) TableName() string {
	return "database"
}

// Type returns the engine type name (mysql, postgresql). Requires the
// ValidDatabase association to be preloaded.
func (d *Database) Type() string {
	if d.ValidDatabase == nil {
		return ""
	}
	return d.ValidDatabase.Name
}

// URL renders the catalog-facing connection URL of the live database.
func (d *Database) URL() string {
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		d.Type(), d.Username, d.Password, d.Host, d.Port, d.Name)
}
