package anonymization

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"testing"
	"time"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/server"
	gmssql "github.com/dolthub/go-mysql-server/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprotectionapi/config"
	"dataprotectionapi/models"
	"dataprotectionapi/pkg/synth"
	"dataprotectionapi/services/dbconn"
)

// startSandbox boots a temporary in-memory MySQL server holding an empty
// livedb database and returns its port. The anonymized store is pointed at
// the same server, under a separate database created on demand.
func startSandbox(t *testing.T) int {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	lis.Close()

	provider := memory.NewDBProvider(memory.NewDatabase("livedb"))
	engine := sqle.NewDefault(provider)

	cfg := server.Config{
		Protocol: "tcp",
		Address:  fmt.Sprintf("127.0.0.1:%d", port),
	}
	s, err := server.NewServer(cfg, engine, gmssql.NewContext, memory.NewSessionBuilder(provider), nil)
	require.NoError(t, err)

	go func() {
		s.Start()
	}()
	t.Cleanup(func() {
		s.Close()
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return port
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Skip("temporary MySQL server did not come up in time")
	return 0
}

func pointStoreAtSandbox(t *testing.T, port int) {
	t.Helper()
	saved := config.Cfg
	t.Cleanup(func() { config.Cfg = saved })
	config.Cfg.StoreHost = "127.0.0.1"
	config.Cfg.StorePort = port
	config.Cfg.StoreUser = "root"
	config.Cfg.StorePass = ""
}

func sandboxTable(port int, tableName string, columns []models.Column) *models.Table {
	return &models.Table{
		ID:         5,
		DatabaseID: 1,
		Name:       tableName,
		Database: &models.Database{
			ID:            1,
			Username:      "root",
			Password:      "",
			Host:          "127.0.0.1",
			Port:          port,
			Name:          "livedb",
			ValidDatabase: &models.ValidDatabase{Name: "mysql"},
		},
		Columns: columns,
	}
}

func openSandboxDB(t *testing.T, port int, dbName string) *sql.DB {
	t.Helper()
	db, err := sql.Open("mysql", fmt.Sprintf("root:@tcp(127.0.0.1:%d)/%s", port, dbName))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAnonymizeAndDeanonymizeRoundTrip(t *testing.T) {
	port := startSandbox(t)
	pointStoreAtSandbox(t, port)
	ctx := context.Background()

	live := openSandboxDB(t, port, "livedb")
	_, err := live.ExecContext(ctx, `CREATE TABLE people (
		id int PRIMARY KEY,
		name varchar(100),
		email varchar(255),
		city varchar(100)
	)`)
	require.NoError(t, err)
	_, err = live.ExecContext(ctx, `INSERT INTO people (id, name, email, city) VALUES
		(1, 'Ada', 'a@b.com', 'Lisbon'),
		(2, 'Grace', 'c@d.com', 'Porto'),
		(3, 'Alan', 'e@f.com', 'Braga')`)
	require.NoError(t, err)

	repo := &fakeTableRepo{table: sandboxTable(port, "people", []models.Column{
		{ID: 9, TableID: 5, Name: "email", AnonymizationType: synth.CategoryEmail},
	})}
	svc := NewServiceWithDeps(repo, NewClonerWithDeps(dbconn.Open, dbconn.OpenServer, 2), dbconn.Open, dbconn.OpenServer, 2)

	require.NoError(t, svc.Anonymize(ctx, 5))
	require.Equal(t, []bool{true}, repo.setValues)

	// The store clone holds the primary key plus the declared column, with
	// deterministic synthetic values.
	store := openSandboxDB(t, port, "database1")
	originals := map[int]string{1: "a@b.com", 2: "c@d.com", 3: "e@f.com"}
	rows, err := store.QueryContext(ctx, "SELECT id, email FROM people ORDER BY id")
	require.NoError(t, err)
	storeEmails := map[int]string{}
	for rows.Next() {
		var id int
		var email string
		require.NoError(t, rows.Scan(&id, &email))
		storeEmails[id] = email
	}
	require.NoError(t, rows.Err())
	rows.Close()
	require.Len(t, storeEmails, 3)
	for id, original := range originals {
		seed := synth.SeedString(1, 5, "email", fmt.Sprintf("%d", id), original)
		expected, err := synth.Generate(synth.CategoryEmail, seed)
		require.NoError(t, err)
		assert.Equal(t, expected, storeEmails[id], "row %d", id)
		assert.NotEqual(t, original, storeEmails[id], "row %d", id)
	}

	// The source table is untouched until reversal merges the clone back.
	var liveEmail string
	require.NoError(t, live.QueryRowContext(ctx, "SELECT email FROM people WHERE id = 1").Scan(&liveEmail))
	assert.Equal(t, "a@b.com", liveEmail)

	// A second run must refuse while the clone exists.
	err = svc.Anonymize(ctx, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table_already_anonymized")

	require.NoError(t, svc.Deanonymize(ctx, 5))
	require.Equal(t, []bool{true, false}, repo.setValues)

	// Declared column now carries the store's values; everything else is verbatim.
	var name, email, city string
	require.NoError(t, live.QueryRowContext(ctx, "SELECT name, email, city FROM people WHERE id = 2").Scan(&name, &email, &city))
	assert.Equal(t, "Grace", name)
	assert.Equal(t, "Porto", city)
	assert.Equal(t, storeEmails[2], email)

	// The store clone is gone.
	var count int
	require.NoError(t, store.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'people'").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestAnonymizeEmptyTable(t *testing.T) {
	port := startSandbox(t)
	pointStoreAtSandbox(t, port)
	ctx := context.Background()

	live := openSandboxDB(t, port, "livedb")
	_, err := live.ExecContext(ctx, "CREATE TABLE visits (id int PRIMARY KEY, ip varchar(64))")
	require.NoError(t, err)

	repo := &fakeTableRepo{table: sandboxTable(port, "visits", []models.Column{
		{ID: 9, TableID: 5, Name: "ip", AnonymizationType: synth.CategoryIPv4},
	})}
	svc := NewServiceWithDeps(repo, NewClonerWithDeps(dbconn.Open, dbconn.OpenServer, 2), dbconn.Open, dbconn.OpenServer, 2)

	require.NoError(t, svc.Anonymize(ctx, 5))

	// Schema-correct but empty clone.
	store := openSandboxDB(t, port, "database1")
	var count int
	require.NoError(t, store.QueryRowContext(ctx, "SELECT COUNT(*) FROM visits").Scan(&count))
	assert.Equal(t, 0, count)

	require.NoError(t, svc.Deanonymize(ctx, 5))
	require.NoError(t, store.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'visits'").Scan(&count))
	assert.Equal(t, 0, count)
}
