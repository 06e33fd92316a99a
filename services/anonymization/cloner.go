package anonymization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dataprotectionapi/config"
	"dataprotectionapi/pkg/apperror"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/services/dbconn"
)

// Opener connects to a live database described by a descriptor. Injectable
// for tests.
type Opener func(ctx context.Context, d dbconn.Descriptor) (*sql.DB, error)

// Cloner copies a live table's schema and full row set from a source
// connection into the anonymized-store destination, batch by batch. No value
// transformation happens here; rows travel as opaque tuples.
type Cloner struct {
	open       Opener
	openServer Opener
	batchSize  int
}

// NewCloner creates a cloner using real connections and the configured batch size.
func NewCloner() *Cloner {
	return &Cloner{
		open:       dbconn.Open,
		openServer: dbconn.OpenServer,
	}
}

// NewClonerWithDeps creates a cloner with injected connection openers and
// batch size. Used for testing.
func NewClonerWithDeps(open, openServer Opener, batchSize int) *Cloner {
	return &Cloner{
		open:       open,
		openServer: openServer,
		batchSize:  batchSize,
	}
}

func (c *Cloner) effectiveBatchSize() int {
	if c.batchSize > 0 {
		return c.batchSize
	}
	if config.Cfg.CopyBatchSize > 0 {
		return config.Cfg.CopyBatchSize
	}
	return 100000
}

// Clone reflects the source table restricted to the declared columns (primary
// key included implicitly), recreates an identically structured table on the
// destination, and bulk-copies all rows in primary-key order. Each batch is
// inserted inside its own transaction; there is no whole-table atomicity, so
// on mid-copy failure the destination is left partial and the caller must
// recover by drop and recreate. Returns the reflected table descriptor.
func (c *Cloner) Clone(ctx context.Context, source, dest dbconn.Descriptor, tableName string, columns []string) (*TableInfo, error) {
	srcDB, err := c.open(ctx, source)
	if err != nil {
		return nil, apperror.Conflict("database_not_exists").WithCause(err)
	}
	defer srcDB.Close()

	info, err := Reflect(ctx, srcDB, source.Type, tableName, columns)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return nil, apperror.Conflict("table_not_exists").WithCause(err)
		}
		return nil, err
	}

	destServer, err := c.openServer(ctx, dest)
	if err != nil {
		return nil, apperror.Unavailable("connection_unavailable", err)
	}
	defer destServer.Close()

	if err := dbconn.EnsureDatabase(ctx, destServer, dest); err != nil {
		return nil, err
	}

	destDB, err := c.open(ctx, dest)
	if err != nil {
		return nil, apperror.Unavailable("connection_unavailable", err)
	}
	defer destDB.Close()

	if err := recreateTable(ctx, destDB, dest.Type, info); err != nil {
		return nil, err
	}

	batches, copied, err := c.copyRows(ctx, srcDB, destDB, source.Type, dest.Type, info)
	if err != nil {
		return nil, err
	}
	logger.Infof("Cloned table %s: %d rows in %d batches", tableName, copied, batches)
	return info, nil
}

// recreateTable drops any pre-existing destination table of the same name and
// creates it with the reflected column layout.
func recreateTable(ctx context.Context, db *sql.DB, engineType string, info *TableInfo) error {
	quoted := dbconn.QuoteIdentifier(engineType, info.Name)
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return fmt.Errorf("failed to drop destination table %s: %w", info.Name, err)
	}

	defs := make([]string, 0, len(info.Columns)+1)
	for _, col := range info.Columns {
		defs = append(defs, dbconn.QuoteIdentifier(engineType, col.Name)+" "+col.DDLType)
	}
	defs = append(defs, "PRIMARY KEY ("+dbconn.QuoteIdentifier(engineType, info.PrimaryKey)+")")

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoted, strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create destination table %s: %w", info.Name, err)
	}
	return nil
}

// copyRows streams all source rows in primary-key order and inserts them into
// the destination, one transaction per batch.
func (c *Cloner) copyRows(ctx context.Context, srcDB, destDB *sql.DB, srcType, destType string, info *TableInfo) (int, int, error) {
	columns := info.ColumnNames()
	selectStmt := buildSelect(srcType, info.Name, columns, info.PrimaryKey)
	insertStmt := buildInsert(destType, info.Name, columns)

	copied := 0
	batches, err := streamBatches(ctx, srcDB, selectStmt, len(columns), c.effectiveBatchSize(),
		func(batchNo int, batch [][]interface{}) error {
			tx, err := destDB.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to begin insert transaction: %w", err)
			}
			stmt, err := tx.PrepareContext(ctx, insertStmt)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to prepare insert: %w", err)
			}
			for _, row := range batch {
				if _, err := stmt.ExecContext(ctx, row...); err != nil {
					stmt.Close()
					tx.Rollback()
					return fmt.Errorf("failed to insert row: %w", err)
				}
			}
			stmt.Close()
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit batch %d: %w", batchNo, err)
			}
			copied += len(batch)
			return nil
		})
	return batches, copied, err
}

// buildSelect renders the batched copy query, ordered by primary key for
// deterministic processing order.
func buildSelect(engineType, tableName string, columns []string, primaryKey string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = dbconn.QuoteIdentifier(engineType, col)
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "),
		dbconn.QuoteIdentifier(engineType, tableName),
		dbconn.QuoteIdentifier(engineType, primaryKey))
}

func buildInsert(engineType, tableName string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = dbconn.QuoteIdentifier(engineType, col)
		placeholders[i] = dbconn.Placeholder(engineType, i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dbconn.QuoteIdentifier(engineType, tableName),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))
}

// streamFailure classifies a mid-stream error. Once at least one batch has
// committed the destination is partial, so the error carries the recovery
// taxonomy; before any commit a plain error suffices.
func streamFailure(applied int, err error) error {
	if applied > 0 {
		return apperror.PartialFailure(applied, applied+1, err)
	}
	return err
}

// streamBatches runs query, materializes rows into fixed-size batches and
// applies them strictly sequentially. A failed batch aborts the stream and is
// surfaced as a partial failure recording how many batches committed before
// it; it is never swallowed.
func streamBatches(ctx context.Context, db *sql.DB, query string, columnCount, batchSize int, apply func(batchNo int, batch [][]interface{}) error) (int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	applied := 0
	batch := make([][]interface{}, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := apply(applied+1, batch); err != nil {
			return apperror.PartialFailure(applied, applied+1, err)
		}
		applied++
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		values := make([]interface{}, columnCount)
		ptrs := make([]interface{}, columnCount)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return applied, streamFailure(applied, fmt.Errorf("failed to scan row: %w", err))
		}
		batch = append(batch, values)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return applied, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return applied, streamFailure(applied, fmt.Errorf("row stream failed: %w", err))
	}
	if err := flush(); err != nil {
		return applied, err
	}
	return applied, nil
}
