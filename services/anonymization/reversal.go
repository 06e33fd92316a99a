package anonymization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dataprotectionapi/pkg/apperror"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/services/dbconn"
)

// Deanonymize copies all rows from the anonymized-store clone back into the
// original source table, matched by primary key, and then drops the clone.
// The source table must still exist; rows are restored into it rather than
// recreating it. Note the restored values are the anonymized ones: the
// pre-anonymization originals are never retained once anonymized.
func (s *service) Deanonymize(ctx context.Context, tableID uint) error {
	table, err := s.tableRepo.GetByIDWithRelations(nil, tableID)
	if err != nil {
		return apperror.NotFound("table_not_found").WithCause(err)
	}
	if table.Database == nil || table.Database.ValidDatabase == nil {
		return fmt.Errorf("table %d has no resolvable database connection", tableID)
	}

	unlock := s.locks.lock(tableID)
	defer unlock()

	source := dbconn.FromDatabase(table.Database)
	store := dbconn.AnonymizedStore(table.DatabaseID, source.Type)

	storeServer, err := s.openServer(ctx, store)
	if err != nil {
		return apperror.Conflict("cloud_database_not_exists").WithCause(err)
	}
	defer storeServer.Close()

	storeExists, err := dbconn.DatabaseExists(ctx, storeServer, store)
	if err != nil {
		return err
	}
	if !storeExists {
		return apperror.Conflict("cloud_database_not_exists")
	}

	storeDB, err := s.open(ctx, store)
	if err != nil {
		return apperror.Conflict("cloud_database_not_exists").WithCause(err)
	}
	defer storeDB.Close()

	info, err := Reflect(ctx, storeDB, store.Type, table.Name, nil)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return apperror.Conflict("table_not_anonymized")
		}
		return err
	}

	srcDB, err := s.open(ctx, source)
	if err != nil {
		return apperror.Conflict("database_not_exists").WithCause(err)
	}
	defer srcDB.Close()

	srcExists, err := tableExists(ctx, srcDB, source.Type, table.Name)
	if err != nil {
		return err
	}
	if !srcExists {
		return apperror.Conflict("table_not_exists")
	}

	logger.Infof("Restoring table %s (id=%d) from anonymized store", table.Name, tableID)
	if err := s.restoreRows(ctx, storeDB, srcDB, store.Type, source.Type, info); err != nil {
		return err
	}

	if _, err := storeDB.ExecContext(ctx, "DROP TABLE "+dbconn.QuoteIdentifier(store.Type, info.Name)); err != nil {
		return fmt.Errorf("failed to drop anonymized-store table %s: %w", info.Name, err)
	}

	if err := s.tableRepo.SetAnonymized(nil, tableID, false); err != nil {
		return fmt.Errorf("failed to record anonymization status for table %d: %w", tableID, err)
	}
	logger.Infof("Restore of table %s (id=%d) completed, store clone dropped", table.Name, tableID)
	return nil
}

// restoreRows streams all store rows in primary-key order and writes every
// column value verbatim back into the source table keyed by primary key, one
// batched update transaction per batch. The clone holds only the primary key
// and the declared columns, so the merge never touches any other source column.
func (s *service) restoreRows(ctx context.Context, storeDB, srcDB *sql.DB, storeType, srcType string, info *TableInfo) error {
	columns := info.ColumnNames()
	pkIdx := indexOf(columns, info.PrimaryKey)
	if pkIdx < 0 {
		return fmt.Errorf("primary key %s missing from reflected columns of %s", info.PrimaryKey, info.Name)
	}

	setColumns := make([]string, 0, len(columns)-1)
	setIdx := make([]int, 0, len(columns)-1)
	for i, name := range columns {
		if i == pkIdx {
			continue
		}
		setColumns = append(setColumns, name)
		setIdx = append(setIdx, i)
	}
	if len(setColumns) == 0 {
		// Primary-key-only table: nothing to merge back.
		return nil
	}

	selectStmt := buildSelect(storeType, info.Name, columns, info.PrimaryKey)
	updateStmt := buildUpdate(srcType, info.Name, setColumns, info.PrimaryKey)

	restored := 0
	batches, err := streamBatches(ctx, storeDB, selectStmt, len(columns), s.effectiveBatchSize(),
		func(batchNo int, batch [][]interface{}) error {
			tx, err := srcDB.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to begin restore transaction: %w", err)
			}
			stmt, err := tx.PrepareContext(ctx, updateStmt)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to prepare restore: %w", err)
			}
			for _, row := range batch {
				args := make([]interface{}, 0, len(setColumns)+1)
				for _, i := range setIdx {
					args = append(args, row[i])
				}
				args = append(args, row[pkIdx])
				if _, err := stmt.ExecContext(ctx, args...); err != nil {
					stmt.Close()
					tx.Rollback()
					return fmt.Errorf("failed to restore row: %w", err)
				}
			}
			stmt.Close()
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit restore batch %d: %w", batchNo, err)
			}
			restored += len(batch)
			return nil
		})
	if err != nil {
		return err
	}
	logger.Infof("Restored %d rows of %s in %d batches", restored, info.Name, batches)
	return nil
}
