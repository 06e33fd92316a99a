package models

// Table represents a table registered for anonymization inside a database.
// Name is unique within the owning database. The primary key column is never
// stored; it is discovered by live reflection at clone time.
type Table struct {
	ID         uint   `gorm:"primaryKey;column:id" json:"id"`
	DatabaseID uint   `gorm:"column:database_id;uniqueIndex:unique_table_database_id_name" json:"database_id" validate:"required"`
	Name       string `gorm:"column:name;uniqueIndex:unique_table_database_id_name" json:"name" validate:"required"`
	Anonymized bool   `gorm:"column:anonymized" json:"anonymized"`

	Database *Database `gorm:"foreignKey:DatabaseID" json:"-"`
	Columns  []Column  `gorm:"foreignKey:TableID" json:"-"`
}

// TableName specifies the static table name for GORM.
func (Table) TableName() string {
	return "table"
}
