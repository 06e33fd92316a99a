package anonymization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dataprotectionapi/services/dbconn"
)

// Reflection errors. Callers map these onto their own precondition taxonomy.
var (
	ErrTableNotFound    = errors.New("table does not exist")
	ErrColumnNotFound   = errors.New("requested column does not exist")
	ErrNoPrimaryKey     = errors.New("table has no primary key")
	ErrCompositePrimary = errors.New("composite primary keys are not supported")
)

// ColumnInfo describes one physical column of a reflected table.
type ColumnInfo struct {
	Name string
	// DDLType is the engine-native type string, usable verbatim in a
	// CREATE TABLE targeting the same engine type.
	DDLType string
}

// TableInfo is the in-memory descriptor of a live table, built at clone time
// by reflection. No column types are assumed ahead of time; copy and update
// statements are constructed generically from this descriptor.
type TableInfo struct {
	Name       string
	PrimaryKey string
	Columns    []ColumnInfo
}

// ColumnNames returns the reflected column names in physical order.
func (t *TableInfo) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Reflect introspects the named table over an open connection and returns its
// descriptor restricted to the requested columns, in physical column order.
// A nil or empty request reflects every column. The primary key column is
// always included. Returns ErrColumnNotFound if any requested column is
// absent from the live table.
func Reflect(ctx context.Context, db *sql.DB, engineType, tableName string, requested []string) (*TableInfo, error) {
	exists, err := tableExists(ctx, db, engineType, tableName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	columns, err := reflectColumns(ctx, db, engineType, tableName)
	if err != nil {
		return nil, err
	}

	primaryKey, err := reflectPrimaryKey(ctx, db, engineType, tableName)
	if err != nil {
		return nil, err
	}

	if len(requested) > 0 {
		columns, err = restrictColumns(columns, primaryKey, requested, tableName)
		if err != nil {
			return nil, err
		}
	}

	return &TableInfo{
		Name:       tableName,
		PrimaryKey: primaryKey,
		Columns:    columns,
	}, nil
}

func tableExists(ctx context.Context, db *sql.DB, engineType, tableName string) (bool, error) {
	var query string
	switch engineType {
	case dbconn.TypeMySQL:
		query = "SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?"
	case dbconn.TypePostgreSQL:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1"
	default:
		return false, fmt.Errorf("unsupported database type %q", engineType)
	}

	var count int
	if err := db.QueryRowContext(ctx, query, tableName).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence of table %s: %w", tableName, err)
	}
	return count > 0, nil
}

func reflectColumns(ctx context.Context, db *sql.DB, engineType, tableName string) ([]ColumnInfo, error) {
	switch engineType {
	case dbconn.TypeMySQL:
		return reflectMySQLColumns(ctx, db, tableName)
	case dbconn.TypePostgreSQL:
		return reflectPostgresColumns(ctx, db, tableName)
	default:
		return nil, fmt.Errorf("unsupported database type %q", engineType)
	}
}

func reflectMySQLColumns(ctx context.Context, db *sql.DB, tableName string) ([]ColumnInfo, error) {
	query := `SELECT COLUMN_NAME, COLUMN_TYPE
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`
	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to reflect columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.DDLType); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", tableName, err)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func reflectPostgresColumns(ctx context.Context, db *sql.DB, tableName string) ([]ColumnInfo, error) {
	query := `SELECT column_name, data_type, COALESCE(character_maximum_length, 0)
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`
	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to reflect columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var maxLen int
		if err := rows.Scan(&col.Name, &col.DDLType, &maxLen); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", tableName, err)
		}
		if maxLen > 0 && strings.HasPrefix(col.DDLType, "character") {
			col.DDLType = fmt.Sprintf("%s(%d)", col.DDLType, maxLen)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func reflectPrimaryKey(ctx context.Context, db *sql.DB, engineType, tableName string) (string, error) {
	var query string
	switch engineType {
	case dbconn.TypeMySQL:
		query = `SELECT COLUMN_NAME
			FROM information_schema.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_KEY = 'PRI'
			ORDER BY ORDINAL_POSITION`
	case dbconn.TypePostgreSQL:
		query = `SELECT kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = 'public'
				AND tc.table_name = $1
			ORDER BY kcu.ordinal_position`
	default:
		return "", fmt.Errorf("unsupported database type %q", engineType)
	}

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return "", fmt.Errorf("failed to reflect primary key of %s: %w", tableName, err)
	}
	defer rows.Close()

	var keyColumns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("failed to scan primary key of %s: %w", tableName, err)
		}
		keyColumns = append(keyColumns, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(keyColumns) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNoPrimaryKey, tableName)
	case 1:
		return keyColumns[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrCompositePrimary, tableName)
	}
}

// restrictColumns keeps only the requested columns plus the primary key,
// preserving physical order.
func restrictColumns(columns []ColumnInfo, primaryKey string, requested []string, tableName string) ([]ColumnInfo, error) {
	wanted := make(map[string]bool, len(requested)+1)
	for _, name := range requested {
		wanted[name] = true
	}
	wanted[primaryKey] = true

	existing := make(map[string]bool, len(columns))
	restricted := make([]ColumnInfo, 0, len(requested)+1)
	for _, col := range columns {
		existing[col.Name] = true
		if wanted[col.Name] {
			restricted = append(restricted, col)
		}
	}

	var missing []string
	for _, name := range requested {
		if !existing[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s in table %s", ErrColumnNotFound, strings.Join(missing, ", "), tableName)
	}
	return restricted, nil
}
