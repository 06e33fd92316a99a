package models

// ValidDatabase enumerates the database engine types a registered database
// may declare. Seeded at startup; the name doubles as the scheme in the
// catalog-facing connection URL (mysql, postgresql).
type ValidDatabase struct {
	ID   uint   `gorm:"primaryKey;column:id" json:"id"`
	Name string `gorm:"column:name;unique" json:"name" validate:"required"`

	Databases []Database `gorm:"foreignKey:ValidDatabaseID" json:"-"`
}

// TableName specifies the static table name for GORM.
func (ValidDatabase) TableName() string {
	return "valid_database"
}
