package anonymization

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/apperror"
)

// fakeTableRepo serves a single catalog table and records anonymization
// status writes.
type fakeTableRepo struct {
	table     *models.Table
	err       error
	setValues []bool
}

func (r *fakeTableRepo) GetByID(tx *gorm.DB, id uint) (*models.Table, error) {
	return r.table, r.err
}

func (r *fakeTableRepo) GetByIDWithRelations(tx *gorm.DB, id uint) (*models.Table, error) {
	return r.table, r.err
}

func (r *fakeTableRepo) List(tx *gorm.DB, databaseID uint, name string, offset, limit int) ([]models.Table, int64, error) {
	return nil, 0, nil
}

func (r *fakeTableRepo) Create(tx *gorm.DB, table *models.Table) error { return nil }
func (r *fakeTableRepo) Update(tx *gorm.DB, table *models.Table) error { return nil }
func (r *fakeTableRepo) Delete(tx *gorm.DB, id uint) error             { return nil }

func (r *fakeTableRepo) CountByDatabaseIDAndName(tx *gorm.DB, databaseID uint, name string, excludeID uint) (int64, error) {
	return 0, nil
}

func (r *fakeTableRepo) SetAnonymized(tx *gorm.DB, id uint, anonymized bool) error {
	r.setValues = append(r.setValues, anonymized)
	return nil
}

func catalogTable() *models.Table {
	return &models.Table{
		ID:         5,
		DatabaseID: 1,
		Name:       "people",
		Database: &models.Database{
			ID:            1,
			Username:      "app",
			Password:      "secret",
			Host:          "db.internal",
			Port:          3306,
			Name:          "livedb",
			ValidDatabase: &models.ValidDatabase{Name: "mysql"},
		},
		Columns: []models.Column{
			{ID: 9, TableID: 5, Name: "email", AnonymizationType: "email"},
		},
	}
}

func TestAnonymizeTableNotFound(t *testing.T) {
	repo := &fakeTableRepo{err: gorm.ErrRecordNotFound}
	svc := NewServiceWithDeps(repo, nil, nil, nil, 2)

	err := svc.Anonymize(context.Background(), 5)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "table_not_found", appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

func TestAnonymizeNoDeclaredColumns(t *testing.T) {
	table := catalogTable()
	table.Columns = nil
	repo := &fakeTableRepo{table: table}
	svc := NewServiceWithDeps(repo, nil, nil, nil, 2)

	err := svc.Anonymize(context.Background(), 5)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "no_columns_declared", appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, repo.setValues)
}

func TestAnonymizeAlreadyAnonymized(t *testing.T) {
	storeServer, serverMock, err := sqlmock.New()
	require.NoError(t, err)
	storeDB, storeMock, err := sqlmock.New()
	require.NoError(t, err)

	serverMock.ExpectQuery(`SELECT COUNT\(\*\) FROM information_schema.SCHEMATA`).
		WithArgs("database1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	expectMySQLTableExists(storeMock, "people", 1)

	repo := &fakeTableRepo{table: catalogTable()}
	open := fixedOpener(t, map[string]*sql.DB{"database1": storeDB})
	openServer := fixedOpener(t, map[string]*sql.DB{"database1": storeServer})
	svc := NewServiceWithDeps(repo, nil, open, openServer, 2)

	err = svc.Anonymize(context.Background(), 5)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "table_already_anonymized", appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.Empty(t, repo.setValues, "a refused run must not touch the anonymization flag")
	assert.NoError(t, serverMock.ExpectationsWereMet())
	assert.NoError(t, storeMock.ExpectationsWereMet())
}

func TestDeanonymizeTableNotFound(t *testing.T) {
	repo := &fakeTableRepo{err: gorm.ErrRecordNotFound}
	svc := NewServiceWithDeps(repo, nil, nil, nil, 2)

	err := svc.Deanonymize(context.Background(), 5)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "table_not_found", appErr.Code)
}

func TestDeanonymizeStoreDatabaseMissing(t *testing.T) {
	storeServer, serverMock, err := sqlmock.New()
	require.NoError(t, err)

	serverMock.ExpectQuery(`SELECT COUNT\(\*\) FROM information_schema.SCHEMATA`).
		WithArgs("database1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	repo := &fakeTableRepo{table: catalogTable()}
	openServer := fixedOpener(t, map[string]*sql.DB{"database1": storeServer})
	svc := NewServiceWithDeps(repo, nil, nil, openServer, 2)

	err = svc.Deanonymize(context.Background(), 5)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "cloud_database_not_exists", appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.NoError(t, serverMock.ExpectationsWereMet())
}

func TestDeanonymizeNeverAnonymized(t *testing.T) {
	storeServer, serverMock, err := sqlmock.New()
	require.NoError(t, err)
	storeDB, storeMock, err := sqlmock.New()
	require.NoError(t, err)

	serverMock.ExpectQuery(`SELECT COUNT\(\*\) FROM information_schema.SCHEMATA`).
		WithArgs("database1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	// Store database exists but holds no clone of this table.
	expectMySQLTableExists(storeMock, "people", 0)

	repo := &fakeTableRepo{table: catalogTable()}
	open := fixedOpener(t, map[string]*sql.DB{"database1": storeDB})
	openServer := fixedOpener(t, map[string]*sql.DB{"database1": storeServer})
	svc := NewServiceWithDeps(repo, nil, open, openServer, 2)

	err = svc.Deanonymize(context.Background(), 5)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "table_not_anonymized", appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.Empty(t, repo.setValues)
	assert.NoError(t, serverMock.ExpectationsWereMet())
	assert.NoError(t, storeMock.ExpectationsWereMet())
}

func TestStringifyCell(t *testing.T) {
	assert.Equal(t, "", stringifyCell(nil))
	assert.Equal(t, "7", stringifyCell([]byte("7")))
	assert.Equal(t, "a@b.com", stringifyCell([]byte("a@b.com")))
	assert.Equal(t, "7", stringifyCell(int64(7)))
}

func TestBuildUpdate(t *testing.T) {
	stmt := buildUpdate("mysql", "people", []string{"email", "name"}, "id")
	assert.Equal(t, "UPDATE `people` SET `email` = ?, `name` = ? WHERE `id` = ?", stmt)

	stmt = buildUpdate("postgresql", "people", []string{"email"}, "id")
	assert.Equal(t, `UPDATE "people" SET "email" = $1 WHERE "id" = $2`, stmt)
}
