package dbconn

import (
	"fmt"

	"dataprotectionapi/config"
	"dataprotectionapi/models"
)

// Supported engine types. Must match the valid_database names seeded at bootstrap.
const (
	TypeMySQL      = "mysql"
	TypePostgreSQL = "postgresql"
)

// Descriptor holds the connection coordinates of one live database. Two
// descriptors exist per registered database: the primary (the live source)
// and the anonymized-store location derived from it. They always target
// distinct storage so clone operations never collide with the source.
type Descriptor struct {
	Type     string
	Username string
	Password string
	Host     string
	Port     int
	Name     string
}

// FromDatabase builds the primary descriptor from a catalog database record.
// Requires the ValidDatabase association to be preloaded.
func FromDatabase(database *models.Database) Descriptor {
	return Descriptor{
		Type:     database.Type(),
		Username: database.Username,
		Password: database.Password,
		Host:     database.Host,
		Port:     database.Port,
		Name:     database.Name,
	}
}

// AnonymizedStore derives the anonymized-store descriptor for the database
// with the given catalog id. Clones live on the configured store server, in
// a database named after the owning entity's identity.
func AnonymizedStore(databaseID uint, engineType string) Descriptor {
	return Descriptor{
		Type:     engineType,
		Username: config.Cfg.StoreUser,
		Password: config.Cfg.StorePass,
		Host:     config.Cfg.StoreHost,
		Port:     config.Cfg.StorePort,
		Name:     fmt.Sprintf("database%d", databaseID),
	}
}

// URL renders the catalog-facing connection URL.
func (d Descriptor) URL() string {
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		d.Type, d.Username, d.Password, d.Host, d.Port, d.Name)
}

// DriverName returns the database/sql driver name for the engine type.
func (d Descriptor) DriverName() (string, error) {
	switch d.Type {
	case TypeMySQL:
		return "mysql", nil
	case TypePostgreSQL:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database type %q", d.Type)
	}
}

// DSN renders the driver connection string for the described database.
func (d Descriptor) DSN() (string, error) {
	switch d.Type {
	case TypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			d.Username, d.Password, d.Host, d.Port, d.Name), nil
	case TypePostgreSQL:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.Username, d.Password, d.Name), nil
	default:
		return "", fmt.Errorf("unsupported database type %q", d.Type)
	}
}

// ServerDSN renders a connection string for the server that holds the
// database without selecting it, used to create the database on demand.
func (d Descriptor) ServerDSN() (string, error) {
	switch d.Type {
	case TypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/",
			d.Username, d.Password, d.Host, d.Port), nil
	case TypePostgreSQL:
		// Postgres requires a database context; the maintenance database
		// is always present.
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=postgres sslmode=disable",
			d.Host, d.Port, d.Username, d.Password), nil
	default:
		return "", fmt.Errorf("unsupported database type %q", d.Type)
	}
}
