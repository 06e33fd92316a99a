package anonymization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprotectionapi/pkg/apperror"
	"dataprotectionapi/services/dbconn"
)

// fixedOpener returns pre-built handles keyed by descriptor database name.
func fixedOpener(t *testing.T, handles map[string]*sql.DB) Opener {
	return func(ctx context.Context, d dbconn.Descriptor) (*sql.DB, error) {
		db, ok := handles[d.Name]
		if !ok {
			t.Fatalf("unexpected connection request for database %q", d.Name)
		}
		return db, nil
	}
}

func failingOpener(err error) Opener {
	return func(ctx context.Context, d dbconn.Descriptor) (*sql.DB, error) {
		return nil, err
	}
}

func TestCloneCopiesRowsInBatches(t *testing.T) {
	srcDB, srcMock, err := sqlmock.New()
	require.NoError(t, err)
	destServer, serverMock, err := sqlmock.New()
	require.NoError(t, err)
	destDB, destMock, err := sqlmock.New()
	require.NoError(t, err)

	source := dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "livedb"}
	dest := dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "database1"}

	expectMySQLTableExists(srcMock, "people", 1)
	expectMySQLColumns(srcMock, "people", [][2]string{
		{"id", "int"},
		{"name", "varchar(100)"},
		{"email", "varchar(255)"},
	})
	expectMySQLPrimaryKey(srcMock, "people", "id")
	srcMock.ExpectQuery("SELECT `id`, `email` FROM `people` ORDER BY `id`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(1, "a@b.com").
			AddRow(2, "c@d.com").
			AddRow(3, "e@f.com"))

	serverMock.ExpectQuery(`SELECT COUNT\(\*\) FROM information_schema.SCHEMATA`).
		WithArgs("database1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	destMock.ExpectExec("DROP TABLE IF EXISTS `people`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	destMock.ExpectExec("CREATE TABLE `people` \\(`id` int, `email` varchar\\(255\\), PRIMARY KEY \\(`id`\\)\\)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Three rows with batch size two: a full batch then a remainder batch.
	destMock.ExpectBegin()
	insert := destMock.ExpectPrepare("INSERT INTO `people` \\(`id`, `email`\\) VALUES \\(\\?, \\?\\)")
	insert.ExpectExec().WithArgs(int64(1), "a@b.com").WillReturnResult(sqlmock.NewResult(0, 1))
	insert.ExpectExec().WithArgs(int64(2), "c@d.com").WillReturnResult(sqlmock.NewResult(0, 1))
	destMock.ExpectCommit()
	destMock.ExpectBegin()
	insert = destMock.ExpectPrepare("INSERT INTO `people` \\(`id`, `email`\\) VALUES \\(\\?, \\?\\)")
	insert.ExpectExec().WithArgs(int64(3), "e@f.com").WillReturnResult(sqlmock.NewResult(0, 1))
	destMock.ExpectCommit()

	open := fixedOpener(t, map[string]*sql.DB{"livedb": srcDB, "database1": destDB})
	openServer := fixedOpener(t, map[string]*sql.DB{"database1": destServer})
	cloner := NewClonerWithDeps(open, openServer, 2)

	info, err := cloner.Clone(context.Background(), source, dest, "people", []string{"email"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "email"}, info.ColumnNames())

	assert.NoError(t, srcMock.ExpectationsWereMet())
	assert.NoError(t, serverMock.ExpectationsWereMet())
	assert.NoError(t, destMock.ExpectationsWereMet())
}

func TestCloneCreatesStoreDatabaseWhenAbsent(t *testing.T) {
	srcDB, srcMock, err := sqlmock.New()
	require.NoError(t, err)
	destServer, serverMock, err := sqlmock.New()
	require.NoError(t, err)
	destDB, destMock, err := sqlmock.New()
	require.NoError(t, err)

	source := dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "livedb"}
	dest := dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "database1"}

	expectMySQLTableExists(srcMock, "empty", 1)
	expectMySQLColumns(srcMock, "empty", [][2]string{{"id", "int"}})
	expectMySQLPrimaryKey(srcMock, "empty", "id")
	srcMock.ExpectQuery("SELECT `id` FROM `empty` ORDER BY `id`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	serverMock.ExpectQuery(`SELECT COUNT\(\*\) FROM information_schema.SCHEMATA`).
		WithArgs("database1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	serverMock.ExpectExec("CREATE DATABASE `database1`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	destMock.ExpectExec("DROP TABLE IF EXISTS `empty`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	destMock.ExpectExec("CREATE TABLE `empty` \\(`id` int, PRIMARY KEY \\(`id`\\)\\)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	open := fixedOpener(t, map[string]*sql.DB{"livedb": srcDB, "database1": destDB})
	openServer := fixedOpener(t, map[string]*sql.DB{"database1": destServer})
	cloner := NewClonerWithDeps(open, openServer, 2)

	// Zero source rows: the clone exists but no insert transaction runs.
	_, err = cloner.Clone(context.Background(), source, dest, "empty", nil)
	require.NoError(t, err)

	assert.NoError(t, srcMock.ExpectationsWereMet())
	assert.NoError(t, serverMock.ExpectationsWereMet())
	assert.NoError(t, destMock.ExpectationsWereMet())
}

func TestCloneSourceUnreachable(t *testing.T) {
	cloner := NewClonerWithDeps(failingOpener(errors.New("dial tcp: refused")), nil, 2)

	_, err := cloner.Clone(context.Background(),
		dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "livedb"},
		dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "database1"},
		"people", nil)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "database_not_exists", appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestCloneSourceTableMissing(t *testing.T) {
	srcDB, srcMock, err := sqlmock.New()
	require.NoError(t, err)

	expectMySQLTableExists(srcMock, "ghost", 0)

	open := fixedOpener(t, map[string]*sql.DB{"livedb": srcDB})
	cloner := NewClonerWithDeps(open, nil, 2)

	_, err = cloner.Clone(context.Background(),
		dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "livedb"},
		dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "database1"},
		"ghost", nil)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "table_not_exists", appErr.Code)
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.NoError(t, srcMock.ExpectationsWereMet())
}

func TestCloneMidCopyFailureIsPartial(t *testing.T) {
	srcDB, srcMock, err := sqlmock.New()
	require.NoError(t, err)
	destServer, serverMock, err := sqlmock.New()
	require.NoError(t, err)
	destDB, destMock, err := sqlmock.New()
	require.NoError(t, err)

	source := dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "livedb"}
	dest := dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "database1"}

	expectMySQLTableExists(srcMock, "people", 1)
	expectMySQLColumns(srcMock, "people", [][2]string{{"id", "int"}, {"email", "varchar(255)"}})
	expectMySQLPrimaryKey(srcMock, "people", "id")
	srcMock.ExpectQuery("SELECT `id`, `email` FROM `people` ORDER BY `id`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(1, "a@b.com").
			AddRow(2, "c@d.com").
			AddRow(3, "e@f.com"))

	serverMock.ExpectQuery(`SELECT COUNT\(\*\) FROM information_schema.SCHEMATA`).
		WithArgs("database1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	destMock.ExpectExec("DROP TABLE IF EXISTS `people`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	destMock.ExpectExec("CREATE TABLE `people`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	destMock.ExpectBegin()
	insert := destMock.ExpectPrepare("INSERT INTO `people`")
	insert.ExpectExec().WithArgs(int64(1), "a@b.com").WillReturnResult(sqlmock.NewResult(0, 1))
	insert.ExpectExec().WithArgs(int64(2), "c@d.com").WillReturnResult(sqlmock.NewResult(0, 1))
	destMock.ExpectCommit()
	destMock.ExpectBegin()
	insert = destMock.ExpectPrepare("INSERT INTO `people`")
	insert.ExpectExec().WithArgs(int64(3), "e@f.com").WillReturnError(fmt.Errorf("disk full"))
	destMock.ExpectRollback()

	open := fixedOpener(t, map[string]*sql.DB{"livedb": srcDB, "database1": destDB})
	openServer := fixedOpener(t, map[string]*sql.DB{"database1": destServer})
	cloner := NewClonerWithDeps(open, openServer, 2)

	_, err = cloner.Clone(context.Background(), source, dest, "people", []string{"email"})

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "partial_failure", appErr.Code)
	assert.Equal(t, 500, appErr.Status)
	assert.Contains(t, appErr.Error(), "batch 2 failed after 1 committed batches")

	assert.NoError(t, destMock.ExpectationsWereMet())
}

func TestCloneRowStreamFailureAfterCommitIsPartial(t *testing.T) {
	srcDB, srcMock, err := sqlmock.New()
	require.NoError(t, err)
	destServer, serverMock, err := sqlmock.New()
	require.NoError(t, err)
	destDB, destMock, err := sqlmock.New()
	require.NoError(t, err)

	source := dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "livedb"}
	dest := dbconn.Descriptor{Type: dbconn.TypeMySQL, Name: "database1"}

	expectMySQLTableExists(srcMock, "people", 1)
	expectMySQLColumns(srcMock, "people", [][2]string{{"id", "int"}, {"email", "varchar(255)"}})
	expectMySQLPrimaryKey(srcMock, "people", "id")
	// The source stream dies on the third row, after the first batch landed.
	srcMock.ExpectQuery("SELECT `id`, `email` FROM `people` ORDER BY `id`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(1, "a@b.com").
			AddRow(2, "c@d.com").
			AddRow(3, "e@f.com").
			RowError(2, fmt.Errorf("connection reset")))

	serverMock.ExpectQuery(`SELECT COUNT\(\*\) FROM information_schema.SCHEMATA`).
		WithArgs("database1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	destMock.ExpectExec("DROP TABLE IF EXISTS `people`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	destMock.ExpectExec("CREATE TABLE `people`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	destMock.ExpectBegin()
	insert := destMock.ExpectPrepare("INSERT INTO `people`")
	insert.ExpectExec().WithArgs(int64(1), "a@b.com").WillReturnResult(sqlmock.NewResult(0, 1))
	insert.ExpectExec().WithArgs(int64(2), "c@d.com").WillReturnResult(sqlmock.NewResult(0, 1))
	destMock.ExpectCommit()

	open := fixedOpener(t, map[string]*sql.DB{"livedb": srcDB, "database1": destDB})
	openServer := fixedOpener(t, map[string]*sql.DB{"database1": destServer})
	cloner := NewClonerWithDeps(open, openServer, 2)

	_, err = cloner.Clone(context.Background(), source, dest, "people", []string{"email"})

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "partial_failure", appErr.Code)
	assert.Equal(t, 500, appErr.Status)
	assert.Contains(t, appErr.Error(), "connection reset")

	assert.NoError(t, destMock.ExpectationsWereMet())
}
