package models

// Column represents a declared sensitive column of a registered table.
// Only declared columns are rewritten during anonymization; every other
// physical column is copied verbatim. AnonymizationType must be one of the
// synth package categories.
type Column struct {
	ID                uint   `gorm:"primaryKey;column:id" json:"id"`
	TableID           uint   `gorm:"column:table_id;uniqueIndex:unique_column_table_id_name" json:"table_id" validate:"required"`
	Name              string `gorm:"column:name;uniqueIndex:unique_column_table_id_name" json:"name" validate:"required"`
	AnonymizationType string `gorm:"column:anonymization_type" json:"anonymization_type" validate:"required"`

	Table *Table `gorm:"foreignKey:TableID" json:"-"`
}

// TableName specifies the static table name for GORM.
func (Column) TableName() string {
	return "column"
}
